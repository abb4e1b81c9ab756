package tui

import "os"

// DefaultLogFilePath is used when RELEASEKIT_LOG is unset
const DefaultLogFilePath = "/tmp/releasekit.log"

// GetLogFilePath returns RELEASEKIT_LOG or the default release log path
func GetLogFilePath() string {
	if customPath := os.Getenv("RELEASEKIT_LOG"); customPath != "" {
		return customPath
	}
	return DefaultLogFilePath
}
