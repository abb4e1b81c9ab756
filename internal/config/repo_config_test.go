package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"releasekit.dev/releasekit/testhelpers"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0600))
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"MAIL_SENDER", "MAIL_TO", "SMTP_SERVER", "SMTP_PORT",
		"RELEASEKIT_PUBLISH_BACKEND", "RELEASEKIT_PUBLISH_BUCKET", "RELEASEKIT_PUBLISH_ENDPOINT", "AWS_REGION"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults without a config file", func(t *testing.T) {
		clearEnv(t)
		config, err := Load(t.TempDir())
		require.NoError(t, err)
		require.Equal(t, Default(), config)
		require.Equal(t, "master", config.Trunk)
		require.Equal(t, "origin", config.Remote)
		require.Equal(t, "elasticsearch.version", config.DependencyProperty)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		clearEnv(t)
		dir := writeConfig(t, `
trunk: main
owner: acme
dependency:
  property: platform.version
publish:
  backend: minio
  endpoint: localhost:9000
  secure: false
mail:
  recipient: dev@example.com
  port: 2525
`)
		config, err := Load(dir)
		require.NoError(t, err)
		require.Equal(t, "main", config.Trunk)
		require.Equal(t, "acme", config.Owner)
		require.Equal(t, "platform.version", config.DependencyProperty)
		require.Equal(t, "elasticsearch-parent", config.DependencyParent)
		require.Equal(t, "minio", config.PublishBackend)
		require.Equal(t, "localhost:9000", config.PublishEndpoint)
		require.False(t, config.PublishSecure)
		require.Equal(t, "dev@example.com", config.MailRecipient)
		require.Equal(t, 2525, config.MailPort)
		require.Equal(t, "origin", config.Remote)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		clearEnv(t)
		dir := writeConfig(t, "mail:\n  recipient: dev@example.com\n")
		t.Setenv("MAIL_TO", "ops@example.com")
		t.Setenv("MAIL_SENDER", "release@example.com")
		t.Setenv("SMTP_PORT", "587")

		config, err := Load(dir)
		require.NoError(t, err)
		require.Equal(t, "ops@example.com", config.MailRecipient)
		require.Equal(t, "release@example.com", config.MailSender)
		require.Equal(t, 587, config.MailPort)
	})

	t.Run("rejects an invalid port", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SMTP_PORT", "smtp")
		_, err := Load(t.TempDir())
		require.ErrorContains(t, err, "invalid SMTP_PORT")
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		clearEnv(t)
		dir := writeConfig(t, "trunk: [master\n")
		_, err := Load(dir)
		require.ErrorContains(t, err, "failed to parse .releasekit.yml")
	})
}

func TestCheckpoint(t *testing.T) {
	repoRoot := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(repoRoot, ".git"), 0750))

	_, err := GetCheckpoint(repoRoot)
	require.ErrorIs(t, err, ErrNoCheckpoint)

	checkpoint := &Checkpoint{
		TrunkBranch:     "master",
		TrunkHead:       "1111111",
		SourceBranch:    "1.x",
		SourceHead:      "2222222",
		OriginalBranch:  "1.x",
		Tag:             "v2.5.0",
		ReleaseBranches: []string{"release_branch_master_2.5.0", "release_branch_1.x_2.5.0"},
		State:           "Tagged",
		CreatedAt:       time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, PersistCheckpoint(repoRoot, checkpoint))

	loaded, err := GetCheckpoint(repoRoot)
	require.NoError(t, err)
	require.Equal(t, checkpoint, loaded)

	require.NoError(t, ClearCheckpoint(repoRoot))
	require.NoError(t, ClearCheckpoint(repoRoot))
	_, err = GetCheckpoint(repoRoot)
	require.ErrorIs(t, err, ErrNoCheckpoint)
}

func TestCheckpointPathFollowsGitFile(t *testing.T) {
	t.Run("relative gitdir", func(t *testing.T) {
		repoRoot := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(repoRoot, ".git"), []byte("gitdir: ../main/.git/worktrees/wt\n"), 0600))

		want := filepath.Join(filepath.Dir(repoRoot), "main", ".git", "worktrees", "wt", "releasekit", "checkpoint.json")
		require.Equal(t, want, CheckpointPath(repoRoot))
	})

	t.Run("absolute gitdir", func(t *testing.T) {
		repoRoot := t.TempDir()
		dir := filepath.Join(t.TempDir(), "worktrees", "wt")
		require.NoError(t, os.WriteFile(filepath.Join(repoRoot, ".git"), []byte("gitdir: "+dir+"\n"), 0600))

		require.Equal(t, filepath.Join(dir, "releasekit", "checkpoint.json"), CheckpointPath(repoRoot))
	})

	t.Run("git directory", func(t *testing.T) {
		repoRoot := t.TempDir()
		require.Equal(t, filepath.Join(repoRoot, ".git", "releasekit", "checkpoint.json"), CheckpointPath(repoRoot))
	})
}

func TestCheckpointInLinkedWorktree(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.PluginSceneSetup)
	worktree := filepath.Join(t.TempDir(), "wt")
	require.NoError(t, scene.Repo.RunGitCommand("worktree", "add", worktree, "-b", "wt"))

	checkpoint := &Checkpoint{
		TrunkBranch:    "master",
		SourceBranch:   "wt",
		OriginalBranch: "wt",
		State:          "Committed",
		CreatedAt:      time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, PersistCheckpoint(worktree, checkpoint))

	loaded, err := GetCheckpoint(worktree)
	require.NoError(t, err)
	require.Equal(t, checkpoint, loaded)
	require.FileExists(t, filepath.Join(scene.Dir, ".git", "worktrees", "wt", "releasekit", "checkpoint.json"))

	_, err = GetCheckpoint(scene.Dir)
	require.ErrorIs(t, err, ErrNoCheckpoint)

	require.NoError(t, ClearCheckpoint(worktree))
	_, err = GetCheckpoint(worktree)
	require.ErrorIs(t, err, ErrNoCheckpoint)
}
