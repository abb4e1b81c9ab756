package git

import (
	"context"
	"fmt"
)

// Tag creates an annotated tag on HEAD
func (d *Driver) Tag(ctx context.Context, name, message string) error {
	_, err := d.run(ctx, "tag", "-a", name, "-m", message)
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

// DeleteTag deletes a local tag
func (d *Driver) DeleteTag(ctx context.Context, name string) error {
	_, err := d.run(ctx, "tag", "-d", name)
	if err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", name, err)
	}
	return nil
}
