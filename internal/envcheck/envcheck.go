// Package envcheck verifies the environment variables and command line tools a release needs.
package envcheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"releasekit.dev/releasekit/internal/command"
	"releasekit.dev/releasekit/internal/tui"
)

// ToolTimeout bounds each tool invocation
const ToolTimeout = 30 * time.Second

// Status is the outcome of a single check
type Status int

// Check outcomes
const (
	StatusOK Status = iota
	StatusNotPresent
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotPresent:
		return "NOT PRESENT"
	default:
		return "FAILED"
	}
}

func (s Status) colored() string {
	switch s {
	case StatusOK:
		return tui.ColorGreen(s.String())
	case StatusNotPresent:
		return tui.ColorYellow(s.String())
	default:
		return tui.ColorRed(s.String())
	}
}

// ToolRunner runs a tool and returns its combined output
type ToolRunner interface {
	RunTool(ctx context.Context, program string, args ...string) (string, error)
}

type execTools struct{}

func (execTools) RunTool(ctx context.Context, program string, args ...string) (string, error) {
	return command.New(program, command.WithTimeout(ToolTimeout)).RunCombined(ctx, args...)
}

// Options configures the environment check
type Options struct {
	// Getenv defaults to os.Getenv
	Getenv func(string) string
	// Tools defaults to running the tools
	Tools ToolRunner
	// MavenCommand skips mvn3/mvn detection when set
	MavenCommand string
	// JavaVersion, when set, is required in the "java -version" output, e.g. "1.8" or "17"
	JavaVersion string
}

// Result is a single check outcome
type Result struct {
	Label    string
	Status   Status
	Detail   string
	Optional bool
}

type envVar struct {
	label    string
	name     string
	optional bool
}

var envVars = []envVar{
	{"AWS env configuration", "AWS_SECRET_ACCESS_KEY", false},
	{"AWS env configuration", "AWS_ACCESS_KEY_ID", false},
	{"Github env configuration", "GITHUB_LOGIN", true},
	{"Github env configuration", "GITHUB_PASSWORD", true},
	{"Github env configuration", "GITHUB_KEY", true},
	{"Email settings", "MAIL_SENDER", false},
	{"Email settings", "MAIL_TO", true},
	{"Email settings", "SMTP_SERVER", true},
	{"Java settings", "JAVA_HOME", false},
}

// Action checks the environment and prints one line per check. It returns an
// error when a required check failed; optional ones only warn.
func Action(ctx context.Context, splog *tui.Splog, opts Options) ([]Result, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Tools == nil {
		opts.Tools = execTools{}
	}

	var results []Result

	splog.Info("%s", tui.Rule())
	splog.Info("%s", tui.ColorCyan("Environment:"))
	for _, v := range envVars {
		results = append(results, report(splog, checkEnv(opts.Getenv, v)))
	}

	splog.Newline()
	splog.Info("%s", tui.ColorCyan("Commands:"))
	for _, r := range checkCommands(ctx, opts) {
		results = append(results, report(splog, r))
	}

	var failed, missing int
	for _, r := range results {
		switch r.Status {
		case StatusFailed:
			failed++
		case StatusNotPresent:
			missing++
		}
	}

	splog.Newline()
	if failed > 0 {
		splog.Warn("Check found %d error(s) and %d warning(s).", failed, missing)
		return results, fmt.Errorf("environment check found %d error(s)", failed)
	}
	if missing > 0 {
		splog.Info("Check found %d warning(s). Optional settings are not present.", missing)
		return results, nil
	}
	splog.Info("✅ All checks passed. Ready to release.")
	return results, nil
}

func checkEnv(getenv func(string) string, v envVar) Result {
	r := Result{
		Label:    fmt.Sprintf("Checking for %s %s...", v.label, v.name),
		Optional: v.optional,
	}
	switch {
	case getenv(v.name) != "":
		r.Status = StatusOK
	case v.optional:
		r.Status = StatusNotPresent
	default:
		r.Status = StatusFailed
	}
	return r
}

func checkCommands(ctx context.Context, opts Options) []Result {
	results := []Result{
		checkTool(ctx, opts.Tools, "Checking command: git...", "git", "--version"),
		checkTool(ctx, opts.Tools, "Checking command: gpg...", "gpg", "--version"),
	}

	mvn := opts.MavenCommand
	if mvn == "" {
		mvn = "mvn"
		if _, err := opts.Tools.RunTool(ctx, "mvn3", "--version"); err == nil {
			mvn = "mvn3"
		}
	}
	results = append(results, checkTool(ctx, opts.Tools, fmt.Sprintf("Checking command: %s...", mvn), mvn, "--version"))

	java := "java"
	if home := opts.Getenv("JAVA_HOME"); home != "" {
		java = filepath.Join(home, "bin", "java")
	}
	javaResult := checkTool(ctx, opts.Tools, "Checking java version...", java, "-version")
	if javaResult.Status == StatusOK && opts.JavaVersion != "" {
		if !strings.Contains(javaResult.Detail, fmt.Sprintf(" version \"%s", opts.JavaVersion)) {
			javaResult.Status = StatusFailed
			javaResult.Detail = fmt.Sprintf("expected java %s, got %s", opts.JavaVersion, javaResult.Detail)
		}
	}
	return append(results, javaResult)
}

func checkTool(ctx context.Context, tools ToolRunner, label, program string, args ...string) Result {
	out, err := tools.RunTool(ctx, program, args...)
	if err != nil {
		return Result{Label: label, Status: StatusFailed, Detail: fmt.Sprintf("%s is not installed or not in PATH", program)}
	}
	return Result{Label: label, Status: StatusOK, Detail: firstLine(out)}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

func report(splog *tui.Splog, r Result) Result {
	line := fmt.Sprintf("  %-62s %s", r.Label, r.Status.colored())
	if r.Detail != "" && r.Status != StatusNotPresent {
		line += "  " + r.Detail
	}
	splog.Info("%s", line)
	return r
}
