package git

import (
	"context"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"

	"releasekit.dev/releasekit/internal/command"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// Driver issues git operations against a single working tree
type Driver struct {
	root   string
	runner *command.Runner
	repo   *gogit.Repository
}

// Open locates the repository containing dir and returns a driver rooted at its top level
func Open(dir string, logger command.Logger) (*Driver, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	root := worktree.Filesystem.Root()

	return &Driver{
		root: root,
		repo: repo,
		runner: command.New("git",
			command.WithWorkingDir(root),
			command.WithTimeout(DefaultCommandTimeout),
			command.WithLogger(logger),
		),
	}, nil
}

// RepoRoot returns the top-level directory of the working tree
func (d *Driver) RepoRoot() string {
	return d.root
}

func (d *Driver) run(ctx context.Context, args ...string) (string, error) {
	return d.runner.Run(ctx, args...)
}
