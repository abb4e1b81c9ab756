package git

import (
	"context"
	"fmt"
	"strings"
)

// Push pushes refs (branches or tags) to remote
func (d *Driver) Push(ctx context.Context, remote string, refs ...string) error {
	args := append([]string{"push", remote}, refs...)
	_, err := d.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to push %s to %s: %w", strings.Join(refs, " "), remote, err)
	}
	return nil
}
