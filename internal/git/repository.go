package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CurrentBranch returns the checked out branch name
func (d *Driver) CurrentBranch(_ context.Context) (string, error) {
	head, err := d.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch")
	}

	return head.Name().Short(), nil
}

// RevParse resolves a revision (branch, tag, sha) to a full commit hash
func (d *Driver) RevParse(_ context.Context, rev string) (string, error) {
	hash, err := d.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return hash.String(), nil
}

// BranchExists reports whether a local branch exists
func (d *Driver) BranchExists(_ context.Context, name string) (bool, error) {
	_, err := d.repo.Reference(plumbing.NewBranchReferenceName(name), false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up branch %s: %w", name, err)
	}
	return true, nil
}

// TagExists reports whether a tag exists
func (d *Driver) TagExists(_ context.Context, name string) (bool, error) {
	_, err := d.repo.Tag(name)
	if errors.Is(err, gogit.ErrTagNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up tag %s: %w", name, err)
	}
	return true, nil
}
