package git

import (
	"context"
	"fmt"
)

// HardReset performs a hard reset of the current branch to a specific SHA
func (d *Driver) HardReset(ctx context.Context, sha string) error {
	_, err := d.run(ctx, "reset", "--hard", sha)
	if err != nil {
		return fmt.Errorf("failed to hard reset to %s: %w", sha, err)
	}
	return nil
}

// DiscardChanges drops uncommitted edits to tracked files. Untracked files are kept.
func (d *Driver) DiscardChanges(ctx context.Context) error {
	_, err := d.run(ctx, "reset", "--hard", "HEAD")
	if err != nil {
		return fmt.Errorf("failed to discard local changes: %w", err)
	}
	return nil
}
