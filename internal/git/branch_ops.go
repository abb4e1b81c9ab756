package git

import (
	"context"
	"fmt"
)

// ReleaseBranchName returns the temporary branch used to stage a release of branch
func ReleaseBranchName(branch, version string) string {
	return fmt.Sprintf("release_branch_%s_%s", branch, version)
}

// Checkout checks out an existing branch
func (d *Driver) Checkout(ctx context.Context, branchName string) error {
	_, err := d.run(ctx, "checkout", branchName)
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
	}
	return nil
}

// CreateBranch creates a branch at HEAD and checks it out
func (d *Driver) CreateBranch(ctx context.Context, branchName string) error {
	_, err := d.run(ctx, "checkout", "-b", branchName)
	if err != nil {
		return fmt.Errorf("failed to create and checkout branch %s: %w", branchName, err)
	}
	return nil
}

// PullRebase rebases the current branch on top of remote/branch
func (d *Driver) PullRebase(ctx context.Context, remote, branch string) error {
	_, err := d.run(ctx, "pull", "--rebase", remote, branch)
	if err != nil {
		return fmt.Errorf("failed to pull --rebase %s %s: %w", remote, branch, err)
	}
	return nil
}

// DeleteBranch force-deletes a local branch
func (d *Driver) DeleteBranch(ctx context.Context, branchName string) error {
	_, err := d.run(ctx, "branch", "-D", branchName)
	if err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branchName, err)
	}
	return nil
}
