// Package tui provides the terminal side of releasekit.
//
// It handles:
//   - Operator prompts (survey for confirmations, bubbletea for the next version input)
//   - Console and release log output (Splog)
//   - Status colors (lipgloss)
package tui
