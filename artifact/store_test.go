package artifact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_EnsureDirsAndPaths(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	if err := s.EnsureDirs(42); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{s.LogsDir(42), s.ReportsDir(42), s.ArtifactsDir(42)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestStore_Record(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	path := filepath.Join(root, "report.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	artifact, err := s.Record(7, "report", path)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if artifact == nil {
		t.Fatal("Record returned nil artifact for existing file")
	}
	if artifact.Size != 5 {
		t.Errorf("Size = %d, want 5", artifact.Size)
	}
	wantSHA := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if artifact.SHA256 != wantSHA {
		t.Errorf("SHA256 = %s, want %s", artifact.SHA256, wantSHA)
	}
}

func TestStore_Record_MissingFile(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	artifact, err := s.Record(1, "report", filepath.Join(root, "missing.md"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if artifact != nil {
		t.Errorf("Record on missing file = %+v, want nil", artifact)
	}
}
