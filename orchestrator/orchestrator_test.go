package orchestrator

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	if err := os.MkdirAll(filepath.Join(src, "nested"), 0o755); err != nil {
		t.Fatalf("setting up src tree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "top.txt"), []byte("top"), 0o644); err != nil {
		t.Fatalf("writing top.txt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "nested", "inner.txt"), []byte("inner"), 0o644); err != nil {
		t.Fatalf("writing inner.txt: %v", err)
	}

	if err := copyTree(src, dst); err != nil {
		t.Fatalf("copyTree() err=%v", err)
	}

	got, err := os.ReadFile(filepath.Join(dst, "top.txt"))
	if err != nil {
		t.Fatalf("reading copied top.txt: %v", err)
	}
	if string(got) != "top" {
		t.Fatalf("top.txt = %q, want %q", got, "top")
	}

	got, err = os.ReadFile(filepath.Join(dst, "nested", "inner.txt"))
	if err != nil {
		t.Fatalf("reading copied nested/inner.txt: %v", err)
	}
	if string(got) != "inner" {
		t.Fatalf("nested/inner.txt = %q, want %q", got, "inner")
	}
}

func TestCopyTree_MissingSource(t *testing.T) {
	dst := t.TempDir()
	if err := copyTree(filepath.Join(dst, "does-not-exist"), dst); err == nil {
		t.Fatalf("expected error copying a missing source tree")
	}
}
