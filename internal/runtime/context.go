package runtime

import (
	"fmt"

	"releasekit.dev/releasekit/internal/config"
	"releasekit.dev/releasekit/internal/git"
	"releasekit.dev/releasekit/internal/tui"
)

// Context provides access to the repository, configuration and output for commands
type Context struct {
	Splog    *tui.Splog
	Config   *config.Config
	Git      *git.Driver
	RepoRoot string
}

// NewContext opens the repository containing dir and loads its configuration
func NewContext(dir string, splog *tui.Splog) (*Context, error) {
	if splog == nil {
		splog = tui.NewSplog()
	}

	driver, err := git.Open(dir, splog)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(driver.RepoRoot())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &Context{
		Splog:    splog,
		Config:   cfg,
		Git:      driver,
		RepoRoot: driver.RepoRoot(),
	}, nil
}
