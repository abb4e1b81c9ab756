package release

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"releasekit.dev/releasekit/internal/announce"
	"releasekit.dev/releasekit/internal/config"
	relerrors "releasekit.dev/releasekit/internal/errors"
	"releasekit.dev/releasekit/internal/manifest"
	"releasekit.dev/releasekit/internal/publish"
)

// ErrAborted is returned when the operator declines to publish
var ErrAborted = errors.New("release aborted by the operator")

// ErrTagExists is returned when the release version was already tagged
var ErrTagExists = errors.New("release tag already exists")

// Checkpoint is the pre-release state restored on rollback
type Checkpoint = config.Checkpoint

// Options drive a single release
type Options struct {
	// SourceBranch is released, the current branch when empty
	SourceBranch string
	Trunk        string
	Remote       string
	// DryRun keeps every effect local and unwinds it at the end
	DryRun    bool
	SkipTests bool
	// Mail allows sending the announcement outside a dry run
	Mail          bool
	MailRecipient string
	// NextVersion skips the next snapshot version prompt
	NextVersion string
	Namespace   string
	Dependency  DependencySource
	// TemplateDir overrides the embedded announcement templates
	TemplateDir string
}

// Deps are the collaborators of an Orchestrator
type Deps struct {
	RepoRoot string
	VCS      VCS
	Manifest manifest.ReadWriter
	Docs     Documentation
	// PendingFiles are staged at every commit, relative to RepoRoot
	PendingFiles []string
	Builder      Builder
	Issues       IssueTracker
	// Publisher is only needed outside a dry run
	Publisher Publisher
	Mailer    Mailer
	Prompter  Prompter
	Logger    Logger
}

// Orchestrator runs the release state machine
type Orchestrator struct {
	opts Options
	deps Deps

	state      State
	descriptor *Descriptor
	checkpoint *Checkpoint
	artifacts  []string
	message    *announce.Message
}

// New validates deps and applies option defaults
func New(opts Options, deps Deps) (*Orchestrator, error) {
	if deps.RepoRoot == "" {
		return nil, fmt.Errorf("repository root is required")
	}
	required := []struct {
		name string
		set  bool
	}{
		{"VCS", deps.VCS != nil},
		{"Manifest", deps.Manifest != nil},
		{"Docs", deps.Docs != nil},
		{"Builder", deps.Builder != nil},
		{"Issues", deps.Issues != nil},
		{"Mailer", deps.Mailer != nil},
		{"Prompter", deps.Prompter != nil},
		{"Logger", deps.Logger != nil},
	}
	for _, r := range required {
		if !r.set {
			return nil, fmt.Errorf("release dependency %s is required", r.name)
		}
	}
	if !opts.DryRun && deps.Publisher == nil {
		return nil, fmt.Errorf("a publisher is required to publish a release")
	}

	if opts.Trunk == "" {
		opts.Trunk = "master"
	}
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.Namespace == "" {
		opts.Namespace = publish.DefaultNamespace
	}
	if len(deps.PendingFiles) == 0 {
		deps.PendingFiles = []string{"pom.xml", "README.md"}
	}

	return &Orchestrator{opts: opts, deps: deps, state: StateInit}, nil
}

// State returns the current state
func (o *Orchestrator) State() State {
	return o.state
}

// Descriptor returns the resolved release, nil before preparation
func (o *Orchestrator) Descriptor() *Descriptor {
	return o.descriptor
}

// Message returns the rendered announcement, nil before the Announced state
func (o *Orchestrator) Message() *announce.Message {
	return o.message
}

// Run performs the release. On failure every local effect is rolled back and
// the returned error carries the cause along with any cleanup failure.
func (o *Orchestrator) Run(ctx context.Context) error {
	vcs := o.deps.VCS

	original, err := vcs.CurrentBranch(ctx)
	if err != nil {
		return o.abort(fmt.Errorf("failed to get current branch: %w", err))
	}
	if o.opts.SourceBranch == "" {
		o.opts.SourceBranch = original
	}
	if o.opts.SourceBranch == o.opts.Trunk {
		return o.abort(relerrors.NewInvalidBranchError(o.opts.Trunk))
	}

	if err := o.prepare(ctx); err != nil {
		return o.abort(multierr.Append(err, o.returnTo(ctx, original)))
	}

	if err := o.createBranches(ctx, original); err != nil {
		return o.abort(err)
	}

	runErr := o.runPhases(ctx)
	return o.finish(ctx, runErr)
}

// abort fails a release that never reached its phases. The log is dumped
// unless the operator declined.
func (o *Orchestrator) abort(err error) error {
	if !errors.Is(err, ErrAborted) {
		o.deps.Logger.Dump()
	}
	o.transition(StateFailed)
	return err
}

func (o *Orchestrator) transition(to State) {
	o.deps.Logger.Debug("state: %s -> %s", o.state, to)
	o.state = to

	if o.checkpoint == nil || to == StateFailed {
		return
	}
	o.checkpoint.State = to.String()
	if err := config.PersistCheckpoint(o.deps.RepoRoot, o.checkpoint); err != nil {
		o.deps.Logger.Warn("could not save the release checkpoint: %v", err)
	}
}

func (o *Orchestrator) prepare(ctx context.Context) error {
	log, prompt := o.deps.Logger, o.deps.Prompter

	if !o.opts.DryRun {
		log.Warn("dryrun is set to \"false\" - this will push and publish the release")
		log.Info("make sure everything is set up correctly by running the check command!")
		if o.opts.Mail {
			log.Info("An email to %s will be sent after the release", o.opts.MailRecipient)
		}
		confirmed, err := prompt.Confirm("Publish the release?")
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	} else {
		log.Warn("dry run: release branches, commits and the tag are created locally and reset at the end")
		log.Tip("if the run is interrupted before the reset, run 'releasekit recover'")
	}

	log.Info(rule)
	log.Info("Preparing Release from branch [%s] running tests: [%t] dryrun: [%t]",
		o.opts.SourceBranch, !o.opts.SkipTests, o.opts.DryRun)

	if err := o.deps.VCS.Checkout(ctx, o.opts.SourceBranch); err != nil {
		return err
	}

	d, err := ResolveDescriptor(o.deps.Manifest, o.opts.SourceBranch, o.opts.Dependency)
	if err != nil {
		return err
	}
	tagged, err := o.deps.VCS.TagExists(ctx, d.TagName())
	if err != nil {
		return err
	}
	if tagged {
		return fmt.Errorf("%w: %s", ErrTagExists, d.TagName())
	}
	log.Info("  Artifact Id: [%s]", d.ArtifactID)
	log.Info("  Release version: [%s]", d.ReleaseVersion)
	log.Info("  Dependency version: [%s]", d.DependencyVersion)

	next := manifest.ReleaseVersionOf(o.opts.NextVersion)
	if next == "" {
		next, err = prompt.Input(fmt.Sprintf("Enter next snapshot version [%s]:", d.NextSnapshotVersion), d.NextSnapshotVersion)
		if err != nil {
			return err
		}
		next = manifest.ReleaseVersionOf(next)
	}
	if next != "" {
		d.NextSnapshotVersion = next
	}

	log.Info("  Next version: [%s]", d.SnapshotVersion())
	log.Info("  Artifact Name: [%s]", d.ArtifactName)
	log.Info("  Artifact Description: [%s]", d.Description)
	log.Info("  Project URL: [%s]", d.ProjectURL)

	o.descriptor = d
	return nil
}

// createBranches records the checkpoint, cleans the build and creates both
// release branches. A failure here deletes only the branches this run created.
func (o *Orchestrator) createBranches(ctx context.Context, original string) error {
	vcs, d := o.deps.VCS, o.descriptor

	trunkHead, err := o.headOf(ctx, o.opts.Trunk)
	if err != nil {
		return multierr.Append(err, o.returnTo(ctx, original))
	}
	sourceHead, err := o.headOf(ctx, o.opts.SourceBranch)
	if err != nil {
		return multierr.Append(err, o.returnTo(ctx, original))
	}

	o.checkpoint = &Checkpoint{
		TrunkBranch:     o.opts.Trunk,
		TrunkHead:       trunkHead,
		SourceBranch:    o.opts.SourceBranch,
		SourceHead:      sourceHead,
		OriginalBranch:  original,
		ReleaseBranches: []string{d.ReleaseBranch(o.opts.Trunk), d.ReleaseBranch(o.opts.SourceBranch)},
		DryRun:          o.opts.DryRun,
		State:           StateInit.String(),
		CreatedAt:       time.Now().UTC(),
	}
	if err := config.PersistCheckpoint(o.deps.RepoRoot, o.checkpoint); err != nil {
		return multierr.Append(err, o.returnTo(ctx, original))
	}

	var created []string
	err = o.deps.Builder.Clean(ctx)
	if err == nil {
		for _, branch := range []string{o.opts.Trunk, o.opts.SourceBranch} {
			var name string
			name, err = o.createReleaseBranch(ctx, branch)
			if err != nil {
				break
			}
			created = append(created, name)
			o.deps.Logger.Info("  Created release branch [%s]", name)
		}
	}
	if err != nil {
		cleanup := restore(ctx, vcs, o.deps.Logger, &Checkpoint{
			OriginalBranch:  original,
			SourceBranch:    o.opts.SourceBranch,
			ReleaseBranches: created,
		}, false)
		cleanup = multierr.Append(cleanup, config.ClearCheckpoint(o.deps.RepoRoot))
		return multierr.Append(err, cleanup)
	}

	o.transition(StateBranchesCreated)
	return nil
}

func (o *Orchestrator) headOf(ctx context.Context, branch string) (string, error) {
	if err := o.deps.VCS.Checkout(ctx, branch); err != nil {
		return "", err
	}
	head, err := o.deps.VCS.RevParse(ctx, "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get the head of %s: %w", branch, err)
	}
	return head, nil
}

func (o *Orchestrator) createReleaseBranch(ctx context.Context, branch string) (string, error) {
	vcs := o.deps.VCS
	name := o.descriptor.ReleaseBranch(branch)

	exists, err := vcs.BranchExists(ctx, name)
	if err != nil {
		return "", relerrors.NewBranchCreationError(name, "", err)
	}
	if exists {
		return "", relerrors.NewBranchCreationError(name, "branch already exists", nil)
	}
	if err := vcs.Checkout(ctx, branch); err != nil {
		return "", relerrors.NewBranchCreationError(name, "checkout "+branch, err)
	}
	if err := vcs.PullRebase(ctx, o.opts.Remote, branch); err != nil {
		return "", relerrors.NewBranchCreationError(name, fmt.Sprintf("rebase %s onto %s", branch, o.opts.Remote), err)
	}
	if err := vcs.CreateBranch(ctx, name); err != nil {
		return "", relerrors.NewBranchCreationError(name, "", err)
	}
	return name, nil
}

func (o *Orchestrator) returnTo(ctx context.Context, branch string) error {
	if branch == "" {
		return nil
	}
	if err := o.deps.VCS.Checkout(context.WithoutCancel(ctx), branch); err != nil {
		return fmt.Errorf("failed to return to %s: %w", branch, err)
	}
	return nil
}

type phase struct {
	to  State
	run func(context.Context) error
}

func (o *Orchestrator) runPhases(ctx context.Context) error {
	phases := []phase{
		{StateVersionCommitted, o.commitReleaseVersion},
		{StateBuilt, o.build},
		{StateMasterUpdated, o.updateTrunkDocumentation},
		{StateTagged, o.tagRelease},
		{StateSnapshotCommitted, o.commitNextSnapshot},
		{StatePushed, o.push},
		{StatePublished, o.publish},
		{StateAnnounced, o.announce},
		{StateDone, o.printChecklist},
	}

	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.run(ctx); err != nil {
			return fmt.Errorf("failed to reach %s: %w", p.to, err)
		}
		o.transition(p.to)
	}
	return nil
}

// finish keeps a published release, and unwinds a failed release or a dry run
func (o *Orchestrator) finish(ctx context.Context, runErr error) error {
	log := o.deps.Logger
	ctx = context.WithoutCancel(ctx)

	resetHeads := true
	switch {
	case runErr != nil:
		log.Error("release failed after %s: %v", o.state, runErr)
		log.Dump()
		o.transition(StateFailed)
	case o.opts.DryRun:
		log.Info("End of dry_run")
		if err := o.deps.Prompter.Pause("Press Enter to reset changes..."); err != nil {
			log.Debug("reset prompt: %v", err)
		}
	default:
		resetHeads = false
	}

	cleanupErr := restore(ctx, o.deps.VCS, log, o.checkpoint, resetHeads)
	if cleanupErr != nil {
		for _, err := range multierr.Errors(cleanupErr) {
			log.Error("cleanup: %v", err)
		}
		log.Tip("the checkpoint is kept at %s, run 'releasekit recover' once the problem is fixed", config.CheckpointPath(o.deps.RepoRoot))
		return multierr.Append(runErr, fmt.Errorf("rollback incomplete: %w", cleanupErr))
	}
	if err := config.ClearCheckpoint(o.deps.RepoRoot); err != nil {
		return multierr.Append(runErr, err)
	}
	return runErr
}
