package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTreeCreatesDirectoriesAndFiles(t *testing.T) {
	root := Tree(t, filepath.Join(t.TempDir(), "docs"), "Apps/", "Apps/tool.sh", "deep/nested/notes.txt")

	if info, err := os.Stat(filepath.Join(root, "Apps")); err != nil || !info.IsDir() {
		t.Fatalf("expected Apps directory, got %v", err)
	}
	for _, f := range []string{"Apps/tool.sh", "deep/nested/notes.txt"} {
		info, err := os.Stat(filepath.Join(root, f))
		if err != nil {
			t.Fatalf("expected %s to exist: %v", f, err)
		}
		if info.IsDir() {
			t.Fatalf("expected %s to be a file", f)
		}
	}
}

func TestExecutableSetsMode(t *testing.T) {
	path := Executable(t, t.TempDir(), "editor")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable bit, got %v", info.Mode())
	}
}
