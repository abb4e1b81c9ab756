// Package runtime provides the execution context for releasekit commands.
//
// It is built once by the CLI and carries the logger, the resolved
// configuration and the git driver of the repository being released.
package runtime
