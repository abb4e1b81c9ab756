// Package errors provides sentinel errors and custom error types for the releasekit application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrInvalidBranch indicates a release was requested from a branch that cannot be released
	ErrInvalidBranch = errors.New("invalid release branch")

	// ErrBranchCreation indicates that the release branches could not be created
	ErrBranchCreation = errors.New("release branch creation failed")

	// ErrUnresolvedIssues indicates that issues labelled with the release version are still open
	ErrUnresolvedIssues = errors.New("unresolved issues")

	// ErrMissingArtifact indicates that the build did not produce the expected artifact
	ErrMissingArtifact = errors.New("missing release artifact")

	// ErrCommand indicates that an external command exited with a non-zero status
	ErrCommand = errors.New("command failed")

	// ErrConfiguration indicates that a required setting is absent
	ErrConfiguration = errors.New("configuration error")

	// ErrSnapshotDependency indicates the project depends on an unreleased version
	ErrSnapshotDependency = errors.New("snapshot dependency")

	// ErrVersionNotFound indicates that the manifest carries no snapshot version to release
	ErrVersionNotFound = errors.New("release version not found")
)

// InvalidBranchError represents an attempt to release from the trunk branch
type InvalidBranchError struct {
	BranchName string
}

func (e *InvalidBranchError) Error() string {
	return fmt.Sprintf("can not release the %s branch. You need to create another branch before a release", e.BranchName)
}

// Is returns true if the target error is ErrInvalidBranch
func (e *InvalidBranchError) Is(target error) bool {
	return target == ErrInvalidBranch
}

// NewInvalidBranchError creates a new InvalidBranchError
func NewInvalidBranchError(branchName string) *InvalidBranchError {
	return &InvalidBranchError{BranchName: branchName}
}

// BranchCreationError represents a failure while creating a release branch
type BranchCreationError struct {
	BranchName string
	Message    string
	Err        error
}

func (e *BranchCreationError) Error() string {
	msg := fmt.Sprintf("failed to create release branch %s", e.BranchName)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Is returns true if the target error is ErrBranchCreation
func (e *BranchCreationError) Is(target error) bool {
	return target == ErrBranchCreation
}

func (e *BranchCreationError) Unwrap() error {
	return e.Err
}

// NewBranchCreationError creates a new BranchCreationError
func NewBranchCreationError(branchName, message string, err error) *BranchCreationError {
	return &BranchCreationError{
		BranchName: branchName,
		Message:    message,
		Err:        err,
	}
}

// UnresolvedIssuesError represents open issues that block a release
type UnresolvedIssuesError struct {
	Version string
	Count   int
	URL     string
}

func (e *UnresolvedIssuesError) Error() string {
	msg := fmt.Sprintf("some issues [%d] are still opened for version %s", e.Count, e.Version)
	if e.URL != "" {
		msg += ". Check " + e.URL
	}
	return msg
}

// Is returns true if the target error is ErrUnresolvedIssues
func (e *UnresolvedIssuesError) Is(target error) bool {
	return target == ErrUnresolvedIssues
}

// NewUnresolvedIssuesError creates a new UnresolvedIssuesError
func NewUnresolvedIssuesError(version string, count int, url string) *UnresolvedIssuesError {
	return &UnresolvedIssuesError{Version: version, Count: count, URL: url}
}

// MissingArtifactError represents a build that produced no artifact at the expected path
type MissingArtifactError struct {
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("could not find required artifact at %s", e.Path)
}

// Is returns true if the target error is ErrMissingArtifact
func (e *MissingArtifactError) Is(target error) bool {
	return target == ErrMissingArtifact
}

// NewMissingArtifactError creates a new MissingArtifactError
func NewMissingArtifactError(path string) *MissingArtifactError {
	return &MissingArtifactError{Path: path}
}

// CommandError represents an error from an external command execution
type CommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

// CommandLine returns the failing command as it would be typed in a shell
func (e *CommandError) CommandLine() string {
	if len(e.Args) == 0 {
		return e.Command
	}
	return e.Command + " " + strings.Join(e.Args, " ")
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.CommandLine())
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

// Is returns true if the target error is ErrCommand
func (e *CommandError) Is(target error) bool {
	return target == ErrCommand
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError
func NewCommandError(command string, args []string, stdout, stderr string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// ConfigurationError represents a required environment variable or setting that is absent
type ConfigurationError struct {
	Key  string
	Hint string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s is not set", e.Key)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

// Is returns true if the target error is ErrConfiguration
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(key, hint string) *ConfigurationError {
	return &ConfigurationError{Key: key, Hint: hint}
}
