package release

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"releasekit.dev/releasekit/internal/announce"
	"releasekit.dev/releasekit/internal/checksum"
	"releasekit.dev/releasekit/internal/maven"
	"releasekit.dev/releasekit/internal/publish"
)

const rule = "--------------------------------------------------------------------------------"

// Commit messages
const (
	releaseCommitFormat  = "prepare release %s-%s"
	trunkCommitFormat    = "update documentation with release %s"
	snapshotCommitFormat = "prepare for next development iteration"
	tagMessageFormat     = "Tag release version %s"
)

func (o *Orchestrator) commit(ctx context.Context, message string) error {
	if err := o.deps.VCS.Add(ctx, o.deps.PendingFiles...); err != nil {
		return err
	}
	return o.deps.VCS.Commit(ctx, message)
}

// commitReleaseVersion runs on the source release branch
func (o *Orchestrator) commitReleaseVersion(ctx context.Context) error {
	d := o.descriptor

	if _, err := o.deps.Manifest.StripSnapshot(d.ReleaseVersion); err != nil {
		return err
	}
	if _, err := o.deps.Docs.SetVersionHeader(d.ReleaseVersion, d.DependencyVersion); err != nil {
		return err
	}
	o.deps.Logger.Info("  Done removing snapshot version")

	if err := o.commit(ctx, fmt.Sprintf(releaseCommitFormat, d.ArtifactID, d.ReleaseVersion)); err != nil {
		return err
	}
	o.deps.Logger.Info("  Committed release version [%s]", d.ReleaseVersion)
	return nil
}

func (o *Orchestrator) build(ctx context.Context) error {
	log, d := o.deps.Logger, o.descriptor

	log.Info(rule)
	log.Info("Building Release candidate")
	if err := o.deps.Prompter.Pause("Press Enter to continue..."); err != nil {
		return err
	}

	log.Info("  Checking github issues")
	if err := o.deps.Issues.CheckOpenedIssues(ctx, d.ReleaseVersion); err != nil {
		return err
	}

	if o.opts.DryRun {
		log.Info("  Running maven builds now run-tests [%t]", !o.opts.SkipTests)
	} else {
		log.Info("  Running maven builds now and publish to sonatype - run-tests [%t]", !o.opts.SkipTests)
	}
	if err := o.deps.Builder.Build(ctx, maven.BuildOptions{DryRun: o.opts.DryRun, SkipTests: o.opts.SkipTests}); err != nil {
		return err
	}

	artifact, err := o.deps.Builder.Artifact(d.ArtifactID, d.ReleaseVersion)
	if err != nil {
		return err
	}
	o.artifacts, err = checksum.Generate(artifact)
	if err != nil {
		return err
	}
	log.Info(rule)
	return nil
}

// updateTrunkDocumentation records the release in the trunk README
func (o *Orchestrator) updateTrunkDocumentation(ctx context.Context) error {
	d := o.descriptor

	if err := o.deps.VCS.Checkout(ctx, d.ReleaseBranch(o.opts.Trunk)); err != nil {
		return err
	}
	if _, err := o.deps.Docs.SetReleasedVersionRow(d.ProjectURL, d.ReleaseVersion, d.SourceBranch, d.DependencyVersion); err != nil {
		return err
	}
	if _, err := o.deps.Docs.SetInstallInstructions(d.ArtifactID, d.ReleaseVersion); err != nil {
		return err
	}
	return o.commit(ctx, fmt.Sprintf(trunkCommitFormat, d.ReleaseVersion))
}

func (o *Orchestrator) tagRelease(ctx context.Context) error {
	log, vcs, d := o.deps.Logger, o.deps.VCS, o.descriptor

	log.Info("Finish Release -- dry_run: %t", o.opts.DryRun)
	if err := o.deps.Prompter.Pause("Press Enter to continue..."); err != nil {
		return err
	}

	log.Info("  merge release branch")
	if err := o.mergeReleaseBranch(ctx, o.opts.SourceBranch); err != nil {
		return err
	}

	log.Info("  tag")
	if err := vcs.Tag(ctx, d.TagName(), fmt.Sprintf(tagMessageFormat, d.ReleaseVersion)); err != nil {
		return err
	}
	o.checkpoint.Tag = d.TagName()
	return nil
}

func (o *Orchestrator) mergeReleaseBranch(ctx context.Context, branch string) error {
	if err := o.deps.VCS.Checkout(ctx, branch); err != nil {
		return err
	}
	return o.deps.VCS.Merge(ctx, o.descriptor.ReleaseBranch(branch))
}

// commitNextSnapshot runs on the source branch, after the tag
func (o *Orchestrator) commitNextSnapshot(ctx context.Context) error {
	d := o.descriptor

	if _, err := o.deps.Manifest.AddSnapshot(d.ReleaseVersion, d.NextSnapshotVersion); err != nil {
		return err
	}
	if _, err := o.deps.Docs.SetVersionHeader(d.SnapshotVersion(), d.DependencyVersion); err != nil {
		return err
	}
	return o.commit(ctx, snapshotCommitFormat)
}

func (o *Orchestrator) push(ctx context.Context) error {
	log, d := o.deps.Logger, o.descriptor

	log.Info("  merge master branch")
	if err := o.mergeReleaseBranch(ctx, o.opts.Trunk); err != nil {
		return err
	}

	log.Info("  push to %s %s -- dry_run: %t", o.opts.Remote, d.SourceBranch, o.opts.DryRun)
	if o.opts.DryRun {
		log.Info("  dryrun [true] -- skipping push to remote %s %s %s", o.opts.Remote, d.SourceBranch, o.opts.Trunk)
		return nil
	}
	if err := o.deps.VCS.Push(ctx, o.opts.Remote, d.SourceBranch, o.opts.Trunk); err != nil {
		return err
	}
	return o.deps.VCS.Push(ctx, o.opts.Remote, d.TagName())
}

func (o *Orchestrator) publish(ctx context.Context) error {
	log, d := o.deps.Logger, o.descriptor

	log.Info("  publish artifacts to S3 -- dry_run: %t", o.opts.DryRun)
	for _, file := range o.artifacts {
		key := publish.Key(o.opts.Namespace, d.ArtifactID, file)
		if o.opts.DryRun {
			log.Info("  dryrun [true] -- skipping upload of %s to %s", file, key)
			continue
		}

		size := "unknown size"
		if info, err := os.Stat(file); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		log.Info("  uploading %s (%s) to %s", file, size, key)
		if err := o.deps.Publisher.Upload(ctx, file, key); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) announce(ctx context.Context) error {
	log, d := o.deps.Logger, o.descriptor

	log.Info("  preparing email (from github issues)")
	categorized, err := o.deps.Issues.Categorized(ctx, d.ReleaseVersion)
	if err != nil {
		return err
	}

	renderer := &announce.Renderer{TemplateDir: o.opts.TemplateDir}
	msg, err := renderer.Render(announce.Release{
		ArtifactID:  d.ArtifactID,
		Version:     d.ReleaseVersion,
		Name:        d.ArtifactName,
		Description: d.Description,
		ProjectURL:  d.ProjectURL,
	}, categorized)
	if err != nil {
		return err
	}
	o.message = msg

	if err := o.deps.Prompter.Pause("Press Enter to send email..."); err != nil {
		return err
	}
	log.Info("  sending email -- dry_run: %t, mail: %t", o.opts.DryRun, o.opts.Mail)
	sent, err := o.deps.Mailer.Send(msg, announce.SendOptions{DryRun: o.opts.DryRun, Mail: o.opts.Mail})
	if err != nil {
		return err
	}
	if sent {
		log.Info("  email sent to %s", msg.To)
	}
	return nil
}

func (o *Orchestrator) printChecklist(_ context.Context) error {
	log := o.deps.Logger
	log.Info("")
	log.Info("Release successful pending steps:")
	for _, step := range Checklist(o.descriptor.ArtifactID, o.descriptor.ReleaseVersion) {
		log.Info("    * %s", step)
	}
	return nil
}

// Checklist returns the manual follow-up steps of a release
func Checklist(artifactID, version string) []string {
	return []string{
		"close and release sonatype repo: https://oss.sonatype.org/",
		fmt.Sprintf("check if the release is there https://oss.sonatype.org/content/repositories/releases/org/elasticsearch/%s/%s", artifactID, version),
		"tweet about the release",
	}
}
