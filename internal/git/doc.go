// Package git provides the version-control driver used by the release orchestrator.
//
// Mutating operations shell out to the git binary through internal/command so that
// hooks, signing and credential helpers behave exactly as they do for the operator:
//   - Branch management (create, checkout, delete, pull --rebase)
//   - Commit operations (add, commit, merge)
//   - Tags (annotated create, delete)
//   - Remote operations (push) and hard resets
//
// Read-only queries (repository root, current branch, ref existence, rev-parse) go
// through go-git.
package git
