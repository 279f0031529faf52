package version

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestResolve_ReadsVersionFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, VersionFileName), []byte("6.4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Resolve(dir); got != "6.4" {
		t.Errorf("Resolve() = %q, want %q", got, "6.4")
	}
}

func TestResolve_MissingFileFallsBack(t *testing.T) {
	if got := Resolve(t.TempDir()); got != Version {
		t.Errorf("Resolve() = %q, want fallback %q", got, Version)
	}
}

func TestResolve_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, VersionFileName), []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Resolve(dir); got != Version {
		t.Errorf("Resolve() = %q, want fallback %q", got, Version)
	}
}
