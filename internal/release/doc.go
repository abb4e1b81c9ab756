// Package release runs a plugin release as a state machine.
//
// An Orchestrator captures a checkpoint of the trunk and source branches,
// creates the release branches, commits the release version, builds and
// checksums the artifact, updates the trunk documentation, tags, commits the
// next snapshot, merges, pushes, publishes and announces. Any failure after
// the checkpoint resets both branches to it and deletes the release branches
// and tag. A dry run performs the same mutations locally and unwinds them at
// the end.
package release
