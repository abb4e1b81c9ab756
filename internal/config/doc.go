// Package config manages releasekit configuration and state persistence.
//
// It handles:
//   - Project configuration read from .releasekit.yml with environment overrides
//   - The rollback checkpoint of an in-flight release
package config
