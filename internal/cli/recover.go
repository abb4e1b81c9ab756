package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"releasekit.dev/releasekit/internal/config"
	"releasekit.dev/releasekit/internal/release"
)

func newRecoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Restore the repository after an interrupted release",
		Long: `Restore the repository after an interrupted release.

A release records the heads of the trunk and the released branch before it
changes anything. When a run is killed before it could roll back, recover
resets both branches, deletes the release tag and removes the release branches.
Branches of a release that was already pushed are left where they are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			splog, err := newSplog(cmd)
			if err != nil {
				return err
			}
			defer splog.Close()

			ctx, err := newContext(cmd, splog)
			if err != nil {
				return err
			}

			err = release.Recover(cmd.Context(), ctx.RepoRoot, ctx.Git, splog)
			if errors.Is(err, config.ErrNoCheckpoint) {
				splog.Info("Nothing to recover.")
				return nil
			}
			return err
		},
	}
}
