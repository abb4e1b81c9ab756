package release_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"releasekit.dev/releasekit/internal/announce"
	relerrors "releasekit.dev/releasekit/internal/errors"
	"releasekit.dev/releasekit/internal/issues"
	"releasekit.dev/releasekit/internal/maven"
)

var errInjected = errors.New("injected failure")

// fakeVCS keeps branch heads in memory and fails the call matching failOn
type fakeVCS struct {
	current  string
	heads    map[string]string
	tags     map[string]bool
	calls    []string
	failOn   string
	sequence int
}

func newFakeVCS() *fakeVCS {
	return &fakeVCS{
		current: "1.x",
		heads:   map[string]string{"master": "m0", "1.x": "s0"},
		tags:    map[string]bool{},
	}
}

func (f *fakeVCS) call(format string, args ...interface{}) error {
	c := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, c)
	if f.failOn != "" && c == f.failOn {
		return relerrors.NewCommandError("git", strings.Fields(c), "", "", errInjected)
	}
	return nil
}

func (f *fakeVCS) nextSHA() string {
	f.sequence++
	return fmt.Sprintf("c%d", f.sequence)
}

func (f *fakeVCS) called(c string) bool {
	for _, call := range f.calls {
		if call == c {
			return true
		}
	}
	return false
}

func (f *fakeVCS) releaseBranches() []string {
	var names []string
	for name := range f.heads {
		if strings.HasPrefix(name, "release_branch_") {
			names = append(names, name)
		}
	}
	return names
}

func (f *fakeVCS) CurrentBranch(_ context.Context) (string, error) {
	return f.current, nil
}

func (f *fakeVCS) RevParse(_ context.Context, rev string) (string, error) {
	if rev == "HEAD" {
		return f.heads[f.current], nil
	}
	sha, ok := f.heads[rev]
	if !ok {
		return "", fmt.Errorf("unknown revision %s", rev)
	}
	return sha, nil
}

func (f *fakeVCS) BranchExists(_ context.Context, name string) (bool, error) {
	_, ok := f.heads[name]
	return ok, nil
}

func (f *fakeVCS) TagExists(_ context.Context, name string) (bool, error) {
	return f.tags[name], nil
}

func (f *fakeVCS) Checkout(_ context.Context, branch string) error {
	if err := f.call("checkout %s", branch); err != nil {
		return err
	}
	if _, ok := f.heads[branch]; !ok {
		return fmt.Errorf("pathspec %s did not match", branch)
	}
	f.current = branch
	return nil
}

func (f *fakeVCS) CreateBranch(_ context.Context, name string) error {
	if err := f.call("checkout -b %s", name); err != nil {
		return err
	}
	f.heads[name] = f.heads[f.current]
	f.current = name
	return nil
}

func (f *fakeVCS) PullRebase(_ context.Context, remote, branch string) error {
	return f.call("pull --rebase %s %s", remote, branch)
}

func (f *fakeVCS) Add(_ context.Context, paths ...string) error {
	return f.call("add %s", strings.Join(paths, " "))
}

func (f *fakeVCS) Commit(_ context.Context, message string) error {
	if err := f.call("commit %s", message); err != nil {
		return err
	}
	f.heads[f.current] = f.nextSHA()
	return nil
}

func (f *fakeVCS) Merge(_ context.Context, branch string) error {
	if err := f.call("merge %s", branch); err != nil {
		return err
	}
	f.heads[f.current] = f.heads[branch]
	return nil
}

func (f *fakeVCS) Tag(_ context.Context, name, _ string) error {
	if err := f.call("tag %s", name); err != nil {
		return err
	}
	f.tags[name] = true
	return nil
}

func (f *fakeVCS) DeleteTag(_ context.Context, name string) error {
	if err := f.call("tag -d %s", name); err != nil {
		return err
	}
	if !f.tags[name] {
		return fmt.Errorf("tag %s not found", name)
	}
	delete(f.tags, name)
	return nil
}

func (f *fakeVCS) DeleteBranch(_ context.Context, name string) error {
	if err := f.call("branch -D %s", name); err != nil {
		return err
	}
	if f.current == name {
		return fmt.Errorf("cannot delete the checked out branch %s", name)
	}
	delete(f.heads, name)
	return nil
}

func (f *fakeVCS) HardReset(_ context.Context, sha string) error {
	if err := f.call("reset --hard %s", sha); err != nil {
		return err
	}
	f.heads[f.current] = sha
	return nil
}

func (f *fakeVCS) DiscardChanges(_ context.Context) error {
	return f.call("reset --hard HEAD")
}

func (f *fakeVCS) Push(_ context.Context, remote string, refs ...string) error {
	return f.call("push %s %s", remote, strings.Join(refs, " "))
}

// fakeBuilder writes an artifact under root on Build
type fakeBuilder struct {
	root      string
	builds    []maven.BuildOptions
	failBuild bool
}

func (b *fakeBuilder) Clean(_ context.Context) error {
	return nil
}

func (b *fakeBuilder) Build(_ context.Context, opts maven.BuildOptions) error {
	b.builds = append(b.builds, opts)
	if b.failBuild {
		return relerrors.NewCommandError("mvn", opts.Goals(), "", "BUILD FAILURE", errInjected)
	}
	return nil
}

func (b *fakeBuilder) Artifact(artifactID, release string) (string, error) {
	path := maven.ArtifactPath(b.root, artifactID, release)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte("PK\x03\x04 plugin"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeIssues struct {
	open        int
	categorized issues.Categorized
	failList    bool
}

func (i *fakeIssues) CheckOpenedIssues(_ context.Context, version string) error {
	if i.open > 0 {
		return relerrors.NewUnresolvedIssuesError(version, i.open, "https://github.com/elastic/elasticsearch-analysis-icu/issues?labels="+version+"&state=open")
	}
	return nil
}

func (i *fakeIssues) Categorized(_ context.Context, _ string) (issues.Categorized, error) {
	if i.failList {
		return nil, errInjected
	}
	return i.categorized, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (p *fakePublisher) Upload(_ context.Context, localPath, key string) error {
	if _, err := os.Stat(localPath); err != nil {
		return err
	}
	if p.fail {
		return errInjected
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

type fakeMailer struct {
	sent []*announce.Message
	opts []announce.SendOptions
	fail bool
}

func (m *fakeMailer) Send(msg *announce.Message, opts announce.SendOptions) (bool, error) {
	if m.fail {
		return false, errInjected
	}
	m.sent = append(m.sent, msg)
	m.opts = append(m.opts, opts)
	return opts.Deliver(), nil
}

type fakePrompter struct {
	confirm bool
	input   string
	pauses  []string
}

func (p *fakePrompter) Confirm(_ string) (bool, error) {
	return p.confirm, nil
}

func (p *fakePrompter) Input(_ string, defaultValue string) (string, error) {
	if p.input != "" {
		return p.input, nil
	}
	return defaultValue, nil
}

func (p *fakePrompter) Pause(message string) error {
	p.pauses = append(p.pauses, message)
	return nil
}

type recordingLogger struct {
	lines []string
	dumps int
}

func (l *recordingLogger) record(level, format string, args ...interface{}) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Info(format string, args ...interface{}) {
	l.record("INFO", format, args...)
}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.record("WARN", format, args...)
}

func (l *recordingLogger) Error(format string, args ...interface{}) {
	l.record("ERROR", format, args...)
}

func (l *recordingLogger) Debug(format string, args ...interface{}) {
	l.record("DEBUG", format, args...)
}

func (l *recordingLogger) Tip(format string, args ...interface{}) {
	l.record("TIP", format, args...)
}

func (l *recordingLogger) Dump() {
	l.dumps++
}

func (l *recordingLogger) contains(substr string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
