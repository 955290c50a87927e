package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFixtureReplacesDestination(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "nested", "a.lua"), []byte("return 0"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(t.TempDir(), "work")
	if err := os.MkdirAll(dst, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dst, "stale.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Fixture(src, dst)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(got, "nested", "a.lua"))
	if err != nil || string(b) != "return 0" {
		t.Fatalf("copied file: %q %v", b, err)
	}
	if _, err := os.Stat(filepath.Join(got, "stale.txt")); !os.IsNotExist(err) {
		t.Fatalf("stale file survived: %v", err)
	}
}

func TestRepoRootFindsGoMod(t *testing.T) {
	root, err := RepoRoot()
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Fatalf("no go.mod at %s: %v", root, err)
	}
}
