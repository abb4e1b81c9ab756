// Package maven drives the Maven build of the project being released.
package maven

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"releasekit.dev/releasekit/internal/command"
	relerrors "releasekit.dev/releasekit/internal/errors"
)

// BuildOptions selects the build goals
type BuildOptions struct {
	// DryRun builds the local package only, otherwise the artifact is deployed
	DryRun    bool
	SkipTests bool
}

// Goals returns the maven goals for opts
func (o BuildOptions) Goals() []string {
	goals := []string{"clean", "deploy"}
	if o.DryRun {
		goals = []string{"clean", "package"}
	}
	if o.SkipTests {
		goals = append(goals, "-DskipTests")
	}
	return goals
}

// Maven runs mvn against the pom.xml at the project root
type Maven struct {
	root     string
	pom      string
	javaHome string
	program  string
	logger   command.Logger
}

// Option configures Maven
type Option func(*Maven)

// WithJavaHome overrides JAVA_HOME
func WithJavaHome(javaHome string) Option {
	return func(m *Maven) {
		m.javaHome = javaHome
	}
}

// WithCommand forces the maven executable instead of detecting it
func WithCommand(program string) Option {
	return func(m *Maven) {
		m.program = program
	}
}

// WithLogger records maven output
func WithLogger(logger command.Logger) Option {
	return func(m *Maven) {
		m.logger = logger
	}
}

// New creates a Maven for the project at root. JAVA_HOME is read from the
// environment unless WithJavaHome is given.
func New(ctx context.Context, root string, opts ...Option) *Maven {
	m := &Maven{
		root:     root,
		pom:      filepath.Join(root, "pom.xml"),
		javaHome: os.Getenv("JAVA_HOME"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.program == "" {
		m.program = DetectCommand(ctx)
	}
	return m
}

// DetectCommand prefers mvn3 when it is installed, some systems still default to maven 2
func DetectCommand(ctx context.Context) string {
	if command.New("mvn3").Succeeds(ctx, "--version") {
		return "mvn3"
	}
	return "mvn"
}

// Program returns the maven executable in use
func (m *Maven) Program() string {
	return m.program
}

// JavaHome returns the JDK used for builds
func (m *Maven) JavaHome() string {
	return m.javaHome
}

// Clean runs mvn clean
func (m *Maven) Clean(ctx context.Context) error {
	return m.run(ctx, "clean")
}

// Build builds (dry run) or deploys the release artifact
func (m *Maven) Build(ctx context.Context, opts BuildOptions) error {
	return m.run(ctx, opts.Goals()...)
}

// Artifact returns the path of the release zip, which must exist
func (m *Maven) Artifact(artifactID, release string) (string, error) {
	path := ArtifactPath(m.root, artifactID, release)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", relerrors.NewMissingArtifactError(path)
	}
	return path, nil
}

// ArtifactPath is where the build leaves the release zip
func ArtifactPath(root, artifactID, release string) string {
	return filepath.Join(root, "target", "releases", fmt.Sprintf("%s-%s.zip", artifactID, release))
}

func (m *Maven) run(ctx context.Context, goals ...string) error {
	if m.javaHome == "" {
		return relerrors.NewConfigurationError("JAVA_HOME",
			"set it before running a release, on OSX use: export JAVA_HOME=`/usr/libexec/java_home -v '1.8*'`")
	}

	runner := command.New(m.program,
		command.WithWorkingDir(m.root),
		command.WithEnv(
			"JAVA_HOME="+m.javaHome,
			"JAVACMD="+filepath.Join(m.javaHome, "bin", "java"),
			"PATH="+filepath.Join(m.javaHome, "bin")+string(os.PathListSeparator)+os.Getenv("PATH"),
		),
		command.WithLogger(m.logger),
	)

	args := append([]string{"-f", m.pom}, goals...)
	if _, err := runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("maven %v failed: %w", goals, err)
	}
	return nil
}
