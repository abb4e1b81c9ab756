package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Scene is a test scene: a bare remote plus a working clone of it.
// Nothing changes the process working directory; tests pass Scene.Dir explicitly.
type Scene struct {
	Dir    string
	Remote string
	Repo   *GitRepo
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene under a temporary directory.
// It automatically handles cleanup using t.Cleanup().
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "releasekit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	// macOS hands out /var paths that resolve to /private/var
	if resolved, err := filepath.EvalSymlinks(tmpDir); err == nil {
		tmpDir = resolved
	}

	t.Cleanup(func() {
		if os.Getenv("DEBUG") == "" {
			os.RemoveAll(tmpDir)
		}
	})

	remote := filepath.Join(tmpDir, "remote.git")
	if _, err := NewBareRepo(remote); err != nil {
		t.Fatalf("Failed to create remote: %v", err)
	}

	dir := filepath.Join(tmpDir, "work")
	repo, err := CloneGitRepo(remote, dir)
	if err != nil {
		t.Fatalf("Failed to clone remote: %v", err)
	}

	scene := &Scene{
		Dir:    dir,
		Remote: remote,
		Repo:   repo,
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	return scene
}

// BasicSceneSetup commits a single file to master and pushes it.
func BasicSceneSetup(scene *Scene) error {
	if err := scene.Repo.CommitFile("README.md", "# test\n", "initial commit"); err != nil {
		return err
	}
	return scene.Repo.PushBranch("origin", "master")
}
