package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"releasekit.dev/releasekit/internal/announce"
	"releasekit.dev/releasekit/internal/docupdate"
	"releasekit.dev/releasekit/internal/envcheck"
	"releasekit.dev/releasekit/internal/issues"
	"releasekit.dev/releasekit/internal/manifest"
	"releasekit.dev/releasekit/internal/maven"
	"releasekit.dev/releasekit/internal/publish"
	"releasekit.dev/releasekit/internal/release"
	"releasekit.dev/releasekit/internal/runtime"
	"releasekit.dev/releasekit/internal/tui"
)

func runRelease(cmd *cobra.Command, flags *releaseFlags) error {
	splog, err := newSplog(cmd)
	if err != nil {
		return err
	}
	defer splog.Close()

	if flags.check {
		_, err := envcheck.Action(cmd.Context(), splog, envcheck.Options{})
		return err
	}

	ctx, err := newContext(cmd, splog)
	if err != nil {
		return err
	}

	if home, err := os.UserHomeDir(); err == nil {
		if notice, missing := maven.SonatypeNotice(home); missing {
			splog.Info("%s", notice)
		}
	}

	orchestrator, err := newOrchestrator(cmd.Context(), ctx, flags)
	if err != nil {
		return err
	}
	return orchestrator.Run(cmd.Context())
}

// newSplog logs to the console and to a fresh log file
func newSplog(cmd *cobra.Command) (*tui.Splog, error) {
	splog, err := tui.NewSplogWithConfig(tui.GetLogFilePath(), cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	if err := splog.Purge(); err != nil {
		splog.Debug("could not purge %s: %v", splog.LogPath(), err)
	}
	return splog, nil
}

func newContext(cmd *cobra.Command, splog *tui.Splog) (*runtime.Context, error) {
	dir, err := cmd.Flags().GetString("directory")
	if err != nil || dir == "" {
		dir = "."
	}
	return runtime.NewContext(dir, splog)
}

func newOrchestrator(ctx context.Context, rt *runtime.Context, flags *releaseFlags) (*release.Orchestrator, error) {
	cfg := rt.Config
	root := rt.RepoRoot
	dryRun := !flags.publish

	pom := manifest.NewPOM(filepath.Join(root, "pom.xml"))
	readme := &docupdate.README{
		Path:      filepath.Join(root, "README.md"),
		Product:   cfg.Product,
		Namespace: cfg.PublishNamespace,
	}

	mvn := maven.New(ctx, root, maven.WithLogger(rt.Splog))
	rt.Splog.Debug("JAVA_HOME is [%s], maven command is [%s]", mvn.JavaHome(), mvn.Program())

	repository := cfg.Repository
	if repository == "" {
		artifactID, err := pom.Field("artifactId")
		if err != nil {
			return nil, fmt.Errorf("failed to read the artifact id: %w", err)
		}
		repository = artifactID
	}
	tracker, err := issues.NewClient(ctx, issues.OptionsFromEnv(cfg.Owner, repository))
	if err != nil {
		return nil, err
	}

	var publisher release.Publisher
	if !dryRun {
		p, err := publish.New(ctx, publish.Options{
			Backend:  cfg.PublishBackend,
			Bucket:   cfg.PublishBucket,
			Region:   cfg.PublishRegion,
			Endpoint: cfg.PublishEndpoint,
			Secure:   cfg.PublishSecure,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create publisher: %w", err)
		}
		publisher = p
	}

	mailer := &announce.Mailer{
		Sender:     cfg.MailSender,
		Recipient:  cfg.MailRecipient,
		Server:     cfg.MailServer,
		Port:       cfg.MailPort,
		OutputPath: filepath.Join(root, "target", "email.txt"),
	}

	templateDir := cfg.TemplateDir
	if templateDir != "" && !filepath.IsAbs(templateDir) {
		templateDir = filepath.Join(root, templateDir)
	}

	remote := flags.remote
	if remote == "" {
		remote = cfg.Remote
	}

	return release.New(release.Options{
		SourceBranch:  flags.branch,
		Trunk:         cfg.Trunk,
		Remote:        remote,
		DryRun:        dryRun,
		SkipTests:     flags.skipTests,
		Mail:          !flags.disableMail,
		MailRecipient: cfg.MailRecipient,
		NextVersion:   flags.nextVersion,
		Namespace:     cfg.PublishNamespace,
		Dependency: release.DependencySource{
			Property: cfg.DependencyProperty,
			Parent:   cfg.DependencyParent,
		},
		TemplateDir: templateDir,
	}, release.Deps{
		RepoRoot:  root,
		VCS:       rt.Git,
		Manifest:  pom,
		Docs:      readme,
		Builder:   mvn,
		Issues:    tracker,
		Publisher: publisher,
		Mailer:    mailer,
		Prompter:  tui.NewPrompter(rt.Splog, flags.yes),
		Logger:    rt.Splog,
	})
}
