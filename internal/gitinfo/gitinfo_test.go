package gitinfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initRepo(t *testing.T) (string, *git.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.lua"), []byte("function main() end\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("main.lua"); err != nil {
		t.Fatalf("add: %v", err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "t", Email: "t@example.com", When: time.Unix(0, 0)},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return dir, repo, hash.String()
}

func TestDescribeBranch(t *testing.T) {
	dir, _, commit := initRepo(t)
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	rev, err := Describe(sub)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if rev.Commit != commit || rev.Tag != "" || rev.Branch == "" {
		t.Fatalf("unexpected revision: %+v", rev)
	}
	if !strings.HasSuffix(rev.String(), "@"+commit[:7]) {
		t.Fatalf("unexpected string: %s", rev.String())
	}
}

func TestDescribeTag(t *testing.T) {
	dir, repo, commit := initRepo(t)
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if _, err := repo.CreateTag("v1.2.0", head.Hash(), nil); err != nil {
		t.Fatalf("tag: %v", err)
	}
	v, err := Version("git", dir)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != "v1.2.0" {
		t.Fatalf("expected tag, got %s (commit %s)", v, commit)
	}
}

func TestVersionPassthroughAndErrors(t *testing.T) {
	if v, err := Version("1.0.0", "/nonexistent"); err != nil || v != "1.0.0" {
		t.Fatalf("got %q %v", v, err)
	}
	if _, err := Version("git", t.TempDir()); err == nil {
		t.Fatalf("expected error outside a repository")
	}
}
