package release

import (
	"context"

	"releasekit.dev/releasekit/internal/announce"
	"releasekit.dev/releasekit/internal/issues"
	"releasekit.dev/releasekit/internal/maven"
)

// VCS is the version control driver the release mutates
type VCS interface {
	CurrentBranch(ctx context.Context) (string, error)
	RevParse(ctx context.Context, rev string) (string, error)
	BranchExists(ctx context.Context, name string) (bool, error)
	TagExists(ctx context.Context, name string) (bool, error)
	Checkout(ctx context.Context, branch string) error
	CreateBranch(ctx context.Context, name string) error
	PullRebase(ctx context.Context, remote, branch string) error
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Merge(ctx context.Context, branch string) error
	Tag(ctx context.Context, name, message string) error
	DeleteTag(ctx context.Context, name string) error
	DeleteBranch(ctx context.Context, name string) error
	HardReset(ctx context.Context, sha string) error
	DiscardChanges(ctx context.Context) error
	Push(ctx context.Context, remote string, refs ...string) error
}

// Documentation rewrites the project README
type Documentation interface {
	SetVersionHeader(version, dependencyVersion string) (bool, error)
	SetReleasedVersionRow(projectURL, release, branch, dependencyVersion string) (bool, error)
	SetInstallInstructions(artifactID, release string) (bool, error)
}

// Builder cleans, builds and locates the release artifact
type Builder interface {
	Clean(ctx context.Context) error
	Build(ctx context.Context, opts maven.BuildOptions) error
	Artifact(artifactID, release string) (string, error)
}

// IssueTracker gates the release on open issues and lists the closed ones
type IssueTracker interface {
	CheckOpenedIssues(ctx context.Context, version string) error
	Categorized(ctx context.Context, version string) (issues.Categorized, error)
}

// Publisher uploads a file to the download store
type Publisher interface {
	Upload(ctx context.Context, localPath, key string) error
}

// Mailer saves and sends the announcement
type Mailer interface {
	Send(msg *announce.Message, opts announce.SendOptions) (bool, error)
}

// Prompter asks the operator to confirm or provide values
type Prompter interface {
	Confirm(message string) (bool, error)
	Input(message, defaultValue string) (string, error)
	Pause(message string) error
}

// Logger is the operator output. Dump prints the full release log.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Tip(format string, args ...interface{})
	Dump()
}
