// Package command runs external programs (git, mvn, java, gpg) and turns
// non-zero exits into errors.CommandError values carrying the command text.
package command

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	relerrors "releasekit.dev/releasekit/internal/errors"
)

// Logger receives the command lines and their output
type Logger interface {
	Debug(format string, args ...interface{})
}

// Runner executes a program in a working directory
type Runner struct {
	program    string
	workingDir string
	env        []string
	timeout    time.Duration
	logger     Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithWorkingDir sets the directory the program runs in
func WithWorkingDir(dir string) Option {
	return func(r *Runner) {
		r.workingDir = dir
	}
}

// WithEnv appends environment variables (KEY=VALUE) to the inherited environment
func WithEnv(env ...string) Option {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}

// WithTimeout sets a default deadline applied when the caller's context has none.
// A zero timeout means commands may run indefinitely.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

// WithLogger sets the logger that records every command and its output
func WithLogger(logger Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner for the given program
func New(program string, opts ...Option) *Runner {
	r := &Runner{program: program}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the program with args and returns trimmed stdout
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	out, err := r.run(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RunCombined executes the program and returns stdout followed by stderr.
// Tools such as "java -version" report on stderr.
func (r *Runner) RunCombined(ctx context.Context, args ...string) (string, error) {
	out, errOut, err := r.exec(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out + errOut), nil
}

// Succeeds reports whether the program runs and exits zero with the given args.
// It is meant for capability checks such as "mvn3 --version".
func (r *Runner) Succeeds(ctx context.Context, args ...string) bool {
	_, err := r.run(ctx, args...)
	return err == nil
}

func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	out, _, err := r.exec(ctx, args...)
	return out, err
}

func (r *Runner) exec(ctx context.Context, args ...string) (string, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); !ok && r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.debug("run: %s %s", r.program, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.program, args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stdout.Len() > 0 {
		r.debug("%s", stdout.String())
	}
	if stderr.Len() > 0 {
		r.debug("%s", stderr.String())
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = ctx.Err()
		}
		return "", "", relerrors.NewCommandError(r.program, args, stdout.String(), stderr.String(), err)
	}
	return stdout.String(), stderr.String(), nil
}

func (r *Runner) debug(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(format, args...)
	}
}
