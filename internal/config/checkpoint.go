package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoCheckpoint is returned when no release is in flight
var ErrNoCheckpoint = errors.New("no release checkpoint found")

// Checkpoint is the repository state captured before a release mutates anything.
// Rollback hard-resets both branches to these heads.
type Checkpoint struct {
	TrunkBranch     string    `json:"trunkBranch"`
	TrunkHead       string    `json:"trunkHead"`
	SourceBranch    string    `json:"sourceBranch"`
	SourceHead      string    `json:"sourceHead"`
	OriginalBranch  string    `json:"originalBranch,omitempty"`
	Tag             string    `json:"tag,omitempty"`
	ReleaseBranches []string  `json:"releaseBranches,omitempty"`
	DryRun          bool      `json:"dryRun"`
	State           string    `json:"state,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CheckpointPath returns where the checkpoint of repoRoot is stored, inside its git directory
func CheckpointPath(repoRoot string) string {
	return filepath.Join(gitDir(repoRoot), "releasekit", "checkpoint.json")
}

// gitDir follows the "gitdir: <path>" file that linked worktrees and
// submodules keep in place of a .git directory
func gitDir(repoRoot string) string {
	dotGit := filepath.Join(repoRoot, ".git")
	info, err := os.Stat(dotGit)
	if err != nil || info.IsDir() {
		return dotGit
	}
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return dotGit
	}
	dir, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
	if !ok {
		return dotGit
	}
	dir = strings.TrimSpace(dir)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(repoRoot, dir)
	}
	return filepath.Clean(dir)
}

// GetCheckpoint reads the checkpoint from disk
func GetCheckpoint(repoRoot string) (*Checkpoint, error) {
	data, err := os.ReadFile(CheckpointPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCheckpoint
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// PersistCheckpoint writes the checkpoint to disk
func PersistCheckpoint(repoRoot string, checkpoint *Checkpoint) error {
	path := CheckpointPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ClearCheckpoint removes the checkpoint file
func ClearCheckpoint(repoRoot string) error {
	err := os.Remove(CheckpointPath(repoRoot))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	return nil
}
