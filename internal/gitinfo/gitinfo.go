// Package gitinfo resolves a program version from the git repository that
// contains its manifest.
package gitinfo

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Revision describes the checked-out commit.
type Revision struct {
	Commit string
	Branch string
	Tag    string
}

// Short is the first seven characters of Commit.
func (r Revision) Short() string {
	if len(r.Commit) > 7 {
		return r.Commit[:7]
	}
	return r.Commit
}

// String renders the tag when HEAD is tagged, otherwise "<branch>@<short>".
func (r Revision) String() string {
	if r.Tag != "" {
		return r.Tag
	}
	if r.Branch != "" {
		return r.Branch + "@" + r.Short()
	}
	return r.Short()
}

// Describe opens the repository containing dir (searching parent
// directories) and reads HEAD.
func Describe(dir string) (Revision, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Revision{}, fmt.Errorf("not a git repository: %s", dir)
		}
		return Revision{}, fmt.Errorf("open repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return Revision{}, fmt.Errorf("read HEAD: %w", err)
	}
	rev := Revision{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}
	tags, err := repo.Tags()
	if err != nil {
		return rev, nil
	}
	defer tags.Close()
	_ = tags.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tag, err := repo.TagObject(hash); err == nil {
			hash = tag.Target
		}
		if hash == head.Hash() {
			rev.Tag = ref.Name().Short()
			return storer.ErrStop
		}
		return nil
	})
	return rev, nil
}

// Version returns declared unless it is "git", in which case the revision of
// the repository containing dir is used.
func Version(declared, dir string) (string, error) {
	if declared != "git" {
		return declared, nil
	}
	rev, err := Describe(dir)
	if err != nil {
		return "", err
	}
	return rev.String(), nil
}
