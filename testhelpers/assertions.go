// Package testhelpers provides testing utilities for releasekit: temporary git
// repositories with a bare remote, a plugin project fixture, a mock GitHub API
// and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected local branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.Branches()
	require.NoError(t, err, "Failed to list branches")

	sort.Strings(branches)
	expected = append([]string(nil), expected...)
	sort.Strings(expected)

	require.Equal(t, expected, branches, "Branches do not match")
}

// ExpectBranchAt asserts that branch points at sha.
func ExpectBranchAt(t *testing.T, repo *GitRepo, branch, sha string) {
	t.Helper()

	got, err := repo.GetBranchSHA(branch)
	require.NoError(t, err)
	require.Equal(t, sha, got, "branch %s moved", branch)
}

// ExpectFileContains asserts that a repository file contains substr.
func ExpectFileContains(t *testing.T, repo *GitRepo, name, substr string) {
	t.Helper()

	content, err := repo.ReadFile(name)
	require.NoError(t, err)
	require.Contains(t, content, substr)
}
