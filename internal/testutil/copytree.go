// Package testutil holds helpers shared by the end-to-end tests.
package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Fixture copies the fixture directory src into a fresh dst and returns the
// absolute path of dst. Anything already at dst is removed first.
func Fixture(src, dst string) (string, error) {
	abs, err := filepath.Abs(dst)
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(abs); err != nil {
		return "", err
	}
	if err := os.CopyFS(abs, os.DirFS(src)); err != nil {
		return "", err
	}
	return abs, nil
}

// RepoRoot returns the nearest ancestor of the working directory that holds
// go.mod.
func RepoRoot() (string, error) {
	cur, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := cur; ; {
		_, err := os.Stat(filepath.Join(dir, "go.mod"))
		switch {
		case err == nil:
			return dir, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
		next := filepath.Dir(dir)
		if next == dir {
			return "", fs.ErrNotExist
		}
		dir = next
	}
}
