package release

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"releasekit.dev/releasekit/internal/config"
)

// restore returns the repository to cp. With resetHeads the trunk and source
// branches are hard reset and the tag is deleted, otherwise only the release
// branches go away. Uncommitted edits left by a failed phase are dropped first
// so that no branch switch is refused. Every step is attempted and all failures
// are returned.
func restore(ctx context.Context, vcs VCS, log Logger, cp *Checkpoint, resetHeads bool) error {
	errs := vcs.DiscardChanges(ctx)

	if resetHeads {
		errs = multierr.Append(errs, resetBranch(ctx, vcs, cp.TrunkBranch, cp.TrunkHead))
		errs = multierr.Append(errs, resetBranch(ctx, vcs, cp.SourceBranch, cp.SourceHead))
		if cp.Tag != "" {
			if err := vcs.DeleteTag(ctx, cp.Tag); err != nil {
				log.Debug("could not delete tag %s: %v", cp.Tag, err)
			}
		}
	}

	back := cp.OriginalBranch
	if back == "" {
		back = cp.SourceBranch
	}
	if back != "" {
		if err := vcs.Checkout(ctx, back); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to return to %s: %w", back, err))
		}
	}

	for _, branch := range cp.ReleaseBranches {
		exists, err := vcs.BranchExists(ctx, branch)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !exists {
			continue
		}
		if err := vcs.DeleteBranch(ctx, branch); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to delete %s: %w", branch, err))
		}
	}
	return errs
}

func resetBranch(ctx context.Context, vcs VCS, branch, head string) error {
	if branch == "" || head == "" {
		return nil
	}
	if err := vcs.Checkout(ctx, branch); err != nil {
		return fmt.Errorf("failed to reset %s: %w", branch, err)
	}
	if err := vcs.HardReset(ctx, head); err != nil {
		return fmt.Errorf("failed to reset %s to %s: %w", branch, head, err)
	}
	return nil
}

// Recover unwinds a release that stopped before its cleanup, using the
// checkpoint persisted in repoRoot. A publish run that already pushed keeps its
// commits and tag; only its release branches are deleted.
func Recover(ctx context.Context, repoRoot string, vcs VCS, log Logger) error {
	cp, err := config.GetCheckpoint(repoRoot)
	if err != nil {
		return err
	}

	reached, _ := ParseState(cp.State)
	resetHeads := cp.DryRun || reached < StatePushed
	log.Info("Recovering release of %s started %s (last state %s)", cp.SourceBranch, cp.CreatedAt.Format("2006-01-02 15:04:05"), reached)
	if resetHeads {
		log.Info("  resetting %s to %s and %s to %s", cp.TrunkBranch, cp.TrunkHead, cp.SourceBranch, cp.SourceHead)
	} else {
		log.Warn("the release was already pushed to the remote, keeping its commits and tag")
	}

	if err := restore(ctx, vcs, log, cp, resetHeads); err != nil {
		return fmt.Errorf("recovery incomplete: %w", err)
	}
	if err := config.ClearCheckpoint(repoRoot); err != nil {
		return err
	}
	log.Info("  repository restored")
	return nil
}
