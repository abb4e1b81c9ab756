package git

import (
	"context"
	"fmt"
)

// Add stages the given paths
func (d *Driver) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := d.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	return nil
}

// Commit records the staged changes with message
func (d *Driver) Commit(ctx context.Context, message string) error {
	_, err := d.run(ctx, "commit", "-m", message)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Merge merges branch into the current branch
func (d *Driver) Merge(ctx context.Context, branch string) error {
	_, err := d.run(ctx, "merge", branch)
	if err != nil {
		return fmt.Errorf("failed to merge %s: %w", branch, err)
	}
	return nil
}
