package config

import (
	"os"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.APIKey != "localops-dev-key" {
		t.Fatalf("APIKey = %q, want localops-dev-key", s.APIKey)
	}
	if s.SandboxImage != "localops-sandbox-runner:latest" {
		t.Fatalf("SandboxImage = %q", s.SandboxImage)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LOCALOPS_API_KEY", "custom-key")
	t.Setenv("LOCALOPS_ARTIFACT_ROOT", "/tmp/data")

	s := FromEnv()
	if s.APIKey != "custom-key" {
		t.Fatalf("APIKey = %q, want custom-key", s.APIKey)
	}
	if s.ArtifactRoot != "/tmp/data" {
		t.Fatalf("ArtifactRoot = %q, want /tmp/data", s.ArtifactRoot)
	}
	if s.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("RedisURL should keep its default, got %q", s.RedisURL)
	}
}

func TestFromEnv_S3Overrides(t *testing.T) {
	t.Setenv("LOCALOPS_S3_BUCKET", "artifacts-bucket")
	t.Setenv("LOCALOPS_S3_USE_PATH_STYLE", "true")

	s := FromEnv()
	if s.S3Bucket != "artifacts-bucket" {
		t.Fatalf("S3Bucket = %q, want artifacts-bucket", s.S3Bucket)
	}
	if !s.S3UsePathStyle {
		t.Fatalf("S3UsePathStyle = false, want true")
	}
}

func TestLoad_MissingFileFallsBackToEnv(t *testing.T) {
	s, err := Load("/nonexistent/localops.yaml")
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if s.APIKey != "localops-dev-key" {
		t.Fatalf("APIKey = %q, want default", s.APIKey)
	}
}

func TestLoad_YAMLOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/localops.yaml"
	if err := os.WriteFile(path, []byte("api_key: from-yaml\nsandbox_image: custom-image:latest\n"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if s.APIKey != "from-yaml" {
		t.Fatalf("APIKey = %q, want from-yaml", s.APIKey)
	}
	if s.SandboxImage != "custom-image:latest" {
		t.Fatalf("SandboxImage = %q, want custom-image:latest", s.SandboxImage)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	got := expandEnv("value: ${FOO}")
	if got != "value: bar" {
		t.Fatalf("expandEnv() = %q", got)
	}
	got = expandEnv("value: ${MISSING:-fallback}")
	if got != "value: fallback" {
		t.Fatalf("expandEnv() = %q", got)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var d Duration
	unmarshal := func(v any) error {
		*(v.(*string)) = "10s"
		return nil
	}
	if err := d.UnmarshalYAML(unmarshal); err != nil {
		t.Fatalf("UnmarshalYAML() err=%v", err)
	}
	if d.Duration != 10*time.Second {
		t.Fatalf("Duration = %v, want 10s", d.Duration)
	}
}
