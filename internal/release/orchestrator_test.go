package release_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"releasekit.dev/releasekit/internal/config"
	"releasekit.dev/releasekit/internal/docupdate"
	relerrors "releasekit.dev/releasekit/internal/errors"
	"releasekit.dev/releasekit/internal/manifest"
	"releasekit.dev/releasekit/internal/maven"
	"releasekit.dev/releasekit/internal/release"
	"releasekit.dev/releasekit/testhelpers"
)

const (
	masterReleaseBranch = "release_branch_master_2.5.0"
	sourceReleaseBranch = "release_branch_1.x_2.5.0"
)

type harness struct {
	dir       string
	vcs       *fakeVCS
	builder   *fakeBuilder
	issues    *fakeIssues
	publisher *fakePublisher
	mailer    *fakeMailer
	prompter  *fakePrompter
	logger    *recordingLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte(testhelpers.PluginPOM), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(testhelpers.PluginREADME), 0644))

	return &harness{
		dir:       dir,
		vcs:       newFakeVCS(),
		builder:   &fakeBuilder{root: dir},
		issues:    &fakeIssues{},
		publisher: &fakePublisher{},
		mailer:    &fakeMailer{},
		prompter:  &fakePrompter{confirm: true},
		logger:    &recordingLogger{},
	}
}

func (h *harness) orchestrator(t *testing.T, opts release.Options) *release.Orchestrator {
	t.Helper()
	o, err := release.New(opts, release.Deps{
		RepoRoot:  h.dir,
		VCS:       h.vcs,
		Manifest:  manifest.NewPOM(filepath.Join(h.dir, "pom.xml")),
		Docs:      docupdate.NewREADME(filepath.Join(h.dir, "README.md")),
		Builder:   h.builder,
		Issues:    h.issues,
		Publisher: h.publisher,
		Mailer:    h.mailer,
		Prompter:  h.prompter,
		Logger:    h.logger,
	})
	require.NoError(t, err)
	return o
}

func (h *harness) requireRolledBack(t *testing.T) {
	t.Helper()
	require.Equal(t, "m0", h.vcs.heads["master"])
	require.Equal(t, "s0", h.vcs.heads["1.x"])
	require.Empty(t, h.vcs.releaseBranches())
	require.Empty(t, h.vcs.tags)
	require.Equal(t, "1.x", h.vcs.current)
	require.NoFileExists(t, config.CheckpointPath(h.dir))
}

func dependency() release.DependencySource {
	return release.DependencySource{Property: "elasticsearch.version", Parent: "elasticsearch-parent"}
}

func publishOptions() release.Options {
	return release.Options{Mail: true, Dependency: dependency()}
}

func dryRunOptions() release.Options {
	return release.Options{DryRun: true, Mail: true, Dependency: dependency()}
}

func TestRunRollsBackOnFailure(t *testing.T) {
	cases := []struct {
		name    string
		inject  func(h *harness)
		reached release.State
		target  error
	}{
		{
			name:    "release commit",
			inject:  func(h *harness) { h.vcs.failOn = "commit prepare release elasticsearch-analysis-icu-2.5.0" },
			reached: release.StateBranchesCreated,
			target:  relerrors.ErrCommand,
		},
		{
			name:    "open issues",
			inject:  func(h *harness) { h.issues.open = 2 },
			reached: release.StateVersionCommitted,
			target:  relerrors.ErrUnresolvedIssues,
		},
		{
			name:    "build",
			inject:  func(h *harness) { h.builder.failBuild = true },
			reached: release.StateVersionCommitted,
			target:  relerrors.ErrCommand,
		},
		{
			name:    "trunk documentation",
			inject:  func(h *harness) { h.vcs.failOn = "checkout " + masterReleaseBranch },
			reached: release.StateBuilt,
			target:  relerrors.ErrCommand,
		},
		{
			name:    "tag",
			inject:  func(h *harness) { h.vcs.failOn = "tag v2.5.0" },
			reached: release.StateMasterUpdated,
			target:  relerrors.ErrCommand,
		},
		{
			name:    "snapshot commit",
			inject:  func(h *harness) { h.vcs.failOn = "commit prepare for next development iteration" },
			reached: release.StateTagged,
			target:  relerrors.ErrCommand,
		},
		{
			name:    "trunk merge",
			inject:  func(h *harness) { h.vcs.failOn = "merge " + masterReleaseBranch },
			reached: release.StateSnapshotCommitted,
			target:  relerrors.ErrCommand,
		},
		{
			name:    "push branches",
			inject:  func(h *harness) { h.vcs.failOn = "push origin 1.x master" },
			reached: release.StateSnapshotCommitted,
			target:  relerrors.ErrCommand,
		},
		{
			name:    "push tag",
			inject:  func(h *harness) { h.vcs.failOn = "push origin v2.5.0" },
			reached: release.StateSnapshotCommitted,
			target:  relerrors.ErrCommand,
		},
		{
			name:    "upload",
			inject:  func(h *harness) { h.publisher.fail = true },
			reached: release.StatePushed,
			target:  errInjected,
		},
		{
			name:    "closed issue listing",
			inject:  func(h *harness) { h.issues.failList = true },
			reached: release.StatePublished,
			target:  errInjected,
		},
		{
			name:    "announcement",
			inject:  func(h *harness) { h.mailer.fail = true },
			reached: release.StatePublished,
			target:  errInjected,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			tc.inject(h)
			o := h.orchestrator(t, publishOptions())

			err := o.Run(context.Background())
			require.Error(t, err)
			require.ErrorIs(t, err, tc.target)
			require.Equal(t, release.StateFailed, o.State())
			require.True(t, h.logger.contains("release failed after "+tc.reached.String()), "lines: %v", h.logger.lines)
			require.Equal(t, 1, h.logger.dumps)

			h.requireRolledBack(t)
			require.True(t, h.vcs.called("reset --hard HEAD"))
			require.True(t, h.vcs.called("reset --hard m0"))
			require.True(t, h.vcs.called("reset --hard s0"))
		})
	}
}

func TestRunPublish(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(t, publishOptions())

	require.NoError(t, o.Run(context.Background()))
	require.Equal(t, release.StateDone, o.State())

	d := o.Descriptor()
	require.Equal(t, "2.5.0", d.ReleaseVersion)
	require.Equal(t, "2.5.1", d.NextSnapshotVersion)
	require.Equal(t, "5.0.0", d.DependencyVersion)

	require.True(t, h.vcs.tags["v2.5.0"])
	require.Empty(t, h.vcs.releaseBranches())
	require.Equal(t, "1.x", h.vcs.current)
	require.NotEqual(t, "m0", h.vcs.heads["master"])
	require.NotEqual(t, "s0", h.vcs.heads["1.x"])
	require.False(t, h.vcs.called("reset --hard m0"))
	require.NoFileExists(t, config.CheckpointPath(h.dir))

	require.True(t, h.vcs.called("push origin 1.x master"))
	require.True(t, h.vcs.called("push origin v2.5.0"))
	require.True(t, h.vcs.called("pull --rebase origin master"))
	require.True(t, h.vcs.called("pull --rebase origin 1.x"))

	require.Equal(t, []maven.BuildOptions{{DryRun: false}}, h.builder.builds)
	require.Equal(t, []string{
		"elasticsearch/elasticsearch-analysis-icu/elasticsearch-analysis-icu-2.5.0.zip",
		"elasticsearch/elasticsearch-analysis-icu/elasticsearch-analysis-icu-2.5.0.zip.sha1",
		"elasticsearch/elasticsearch-analysis-icu/elasticsearch-analysis-icu-2.5.0.zip.md5",
	}, h.publisher.keys)

	require.Len(t, h.mailer.sent, 1)
	require.True(t, h.mailer.opts[0].Deliver())
	require.Equal(t, "[ANN] Elasticsearch ICU Analysis plugin 2.5.0 released", h.mailer.sent[0].Subject)
	require.Equal(t, []string{"Press Enter to continue...", "Press Enter to continue...", "Press Enter to send email..."}, h.prompter.pauses)

	pom, err := os.ReadFile(filepath.Join(h.dir, "pom.xml"))
	require.NoError(t, err)
	require.Contains(t, string(pom), "<version>2.5.1-SNAPSHOT</version>")
	require.True(t, h.logger.contains("Release successful pending steps:"))
	require.True(t, h.logger.contains("https://oss.sonatype.org/content/repositories/releases/org/elasticsearch/elasticsearch-analysis-icu/2.5.0"))
}

func TestRunCommitOrder(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.orchestrator(t, publishOptions()).Run(context.Background()))

	var commits []string
	for _, call := range h.vcs.calls {
		if message, ok := strings.CutPrefix(call, "commit "); ok {
			commits = append(commits, message)
		}
	}
	require.Equal(t, []string{
		"prepare release elasticsearch-analysis-icu-2.5.0",
		"update documentation with release 2.5.0",
		"prepare for next development iteration",
	}, commits)
}

func TestRunDryRun(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(t, dryRunOptions())

	require.NoError(t, o.Run(context.Background()))
	require.Equal(t, release.StateDone, o.State())

	h.requireRolledBack(t)
	for _, call := range h.vcs.calls {
		require.NotContains(t, call, "push")
	}
	require.Empty(t, h.publisher.keys)
	require.Equal(t, []maven.BuildOptions{{DryRun: true}}, h.builder.builds)
	require.Len(t, h.mailer.opts, 1)
	require.False(t, h.mailer.opts[0].Deliver())
	require.Contains(t, h.prompter.pauses, "Press Enter to reset changes...")
	require.True(t, h.logger.contains("End of dry_run"))
	require.Zero(t, h.logger.dumps)
}

func TestRunRejectsTrunk(t *testing.T) {
	h := newHarness(t)
	h.vcs.current = "master"
	o := h.orchestrator(t, dryRunOptions())

	err := o.Run(context.Background())
	require.ErrorIs(t, err, relerrors.ErrInvalidBranch)
	require.Equal(t, release.StateFailed, o.State())
	require.Empty(t, h.vcs.calls)
	require.Equal(t, 1, h.logger.dumps)
}

func TestRunBranchCreationFailure(t *testing.T) {
	t.Run("existing release branch is kept", func(t *testing.T) {
		h := newHarness(t)
		h.vcs.heads[sourceReleaseBranch] = "old"
		o := h.orchestrator(t, dryRunOptions())

		err := o.Run(context.Background())
		require.ErrorIs(t, err, relerrors.ErrBranchCreation)
		require.ErrorContains(t, err, "branch already exists")
		require.Equal(t, release.StateFailed, o.State())

		require.Equal(t, "old", h.vcs.heads[sourceReleaseBranch])
		require.NotContains(t, h.vcs.heads, masterReleaseBranch)
		require.Equal(t, "1.x", h.vcs.current)
		require.False(t, h.vcs.called("reset --hard m0"))
		require.NoFileExists(t, config.CheckpointPath(h.dir))
		require.Equal(t, 1, h.logger.dumps)
	})

	t.Run("rebase failure", func(t *testing.T) {
		h := newHarness(t)
		h.vcs.failOn = "pull --rebase origin 1.x"
		o := h.orchestrator(t, dryRunOptions())

		err := o.Run(context.Background())
		require.ErrorIs(t, err, relerrors.ErrBranchCreation)
		require.ErrorIs(t, err, relerrors.ErrCommand)
		require.Empty(t, h.vcs.releaseBranches())
		require.Equal(t, "1.x", h.vcs.current)
	})
}

func TestRunPublishDeclined(t *testing.T) {
	h := newHarness(t)
	h.prompter.confirm = false
	o := h.orchestrator(t, publishOptions())

	err := o.Run(context.Background())
	require.ErrorIs(t, err, release.ErrAborted)
	require.Empty(t, h.vcs.releaseBranches())
	require.Equal(t, "1.x", h.vcs.current)
	require.Zero(t, h.logger.dumps)
}

func TestRunExistingTag(t *testing.T) {
	h := newHarness(t)
	h.vcs.tags["v2.5.0"] = true
	o := h.orchestrator(t, dryRunOptions())

	err := o.Run(context.Background())
	require.ErrorIs(t, err, release.ErrTagExists)
	require.ErrorContains(t, err, "v2.5.0")
	require.Equal(t, release.StateFailed, o.State())

	require.True(t, h.vcs.tags["v2.5.0"], "a tag the run did not create is kept")
	require.Empty(t, h.vcs.releaseBranches())
	require.Equal(t, "1.x", h.vcs.current)
	require.NoFileExists(t, config.CheckpointPath(h.dir))
	require.Equal(t, 1, h.logger.dumps)
}

func TestRunNextVersion(t *testing.T) {
	t.Run("from options", func(t *testing.T) {
		h := newHarness(t)
		opts := publishOptions()
		opts.NextVersion = "2.6.0-SNAPSHOT"
		o := h.orchestrator(t, opts)

		require.NoError(t, o.Run(context.Background()))
		require.Equal(t, "2.6.0", o.Descriptor().NextSnapshotVersion)

		pom, err := os.ReadFile(filepath.Join(h.dir, "pom.xml"))
		require.NoError(t, err)
		require.Contains(t, string(pom), "<version>2.6.0-SNAPSHOT</version>")
	})

	t.Run("from the prompt", func(t *testing.T) {
		h := newHarness(t)
		h.prompter.input = "3.0.0"
		o := h.orchestrator(t, publishOptions())

		require.NoError(t, o.Run(context.Background()))
		require.Equal(t, "3.0.0-SNAPSHOT", o.Descriptor().SnapshotVersion())
	})
}

func TestRunCanceledContext(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(t, dryRunOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := o.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	h.requireRolledBack(t)
}

func TestNewValidatesDeps(t *testing.T) {
	h := newHarness(t)

	_, err := release.New(publishOptions(), release.Deps{RepoRoot: h.dir})
	require.ErrorContains(t, err, "release dependency VCS is required")

	_, err = release.New(publishOptions(), release.Deps{
		RepoRoot: h.dir,
		VCS:      h.vcs,
		Manifest: manifest.NewPOM(filepath.Join(h.dir, "pom.xml")),
		Docs:     docupdate.NewREADME(filepath.Join(h.dir, "README.md")),
		Builder:  h.builder,
		Issues:   h.issues,
		Mailer:   h.mailer,
		Prompter: h.prompter,
		Logger:   h.logger,
	})
	require.ErrorContains(t, err, "a publisher is required")
}

func TestRecover(t *testing.T) {
	persist := func(t *testing.T, h *harness, state release.State, dryRun bool) {
		t.Helper()
		require.NoError(t, config.PersistCheckpoint(h.dir, &config.Checkpoint{
			TrunkBranch:     "master",
			TrunkHead:       "m0",
			SourceBranch:    "1.x",
			SourceHead:      "s0",
			OriginalBranch:  "1.x",
			Tag:             "v2.5.0",
			ReleaseBranches: []string{masterReleaseBranch, sourceReleaseBranch},
			DryRun:          dryRun,
			State:           state.String(),
			CreatedAt:       time.Now().UTC(),
		}))
	}
	crashed := func(h *harness) {
		h.vcs.heads["master"] = "m1"
		h.vcs.heads["1.x"] = "s1"
		h.vcs.heads[masterReleaseBranch] = "m1"
		h.vcs.heads[sourceReleaseBranch] = "s1"
		h.vcs.tags["v2.5.0"] = true
		h.vcs.current = sourceReleaseBranch
	}

	t.Run("resets an interrupted release", func(t *testing.T) {
		h := newHarness(t)
		crashed(h)
		persist(t, h, release.StateTagged, false)

		require.NoError(t, release.Recover(context.Background(), h.dir, h.vcs, h.logger))
		h.requireRolledBack(t)
	})

	t.Run("resets a dry run that reached the end", func(t *testing.T) {
		h := newHarness(t)
		crashed(h)
		persist(t, h, release.StateDone, true)

		require.NoError(t, release.Recover(context.Background(), h.dir, h.vcs, h.logger))
		h.requireRolledBack(t)
	})

	t.Run("keeps a pushed release", func(t *testing.T) {
		h := newHarness(t)
		crashed(h)
		persist(t, h, release.StatePushed, false)

		require.NoError(t, release.Recover(context.Background(), h.dir, h.vcs, h.logger))
		require.Equal(t, "m1", h.vcs.heads["master"])
		require.Equal(t, "s1", h.vcs.heads["1.x"])
		require.True(t, h.vcs.tags["v2.5.0"])
		require.Empty(t, h.vcs.releaseBranches())
		require.True(t, h.logger.contains("already pushed"))
	})

	t.Run("nothing to recover", func(t *testing.T) {
		h := newHarness(t)
		err := release.Recover(context.Background(), h.dir, h.vcs, h.logger)
		require.ErrorIs(t, err, config.ErrNoCheckpoint)
	})
}
