// Package constants provides shared constants used throughout the ontomerge
// codebase: merge defaults, file permissions, and CLI timeouts that should be
// consistent across the application.
package constants

import "time"

// Merge defaults
const (
	// DefaultThreshold is the minimum similarity score for a candidate to be admitted
	DefaultThreshold = 0.6

	// DefaultScore is the edge weight given to admitted candidates without a score
	DefaultScore = 1.0

	// DefaultAdmission is the default candidate admission rule
	DefaultAdmission = "both"

	// DefaultCardinality is the default candidate cardinality filter
	DefaultCardinality = "none"
)

// Timeout constants
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// MaxWorkers caps the number of concurrent merge workers
	MaxWorkers = 256

	// MaxCandidateLineBytes is the longest candidate row the reader accepts
	MaxCandidateLineBytes = 1 << 20

	// CollisionSuffixLimit bounds numeric suffixes tried for a colliding name
	CollisionSuffixLimit = 10000
)

// File names
const (
	// ConfigFileName is the base name of the config file (without extension)
	ConfigFileName = ".ontomerge"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "ONTOMERGE"
)
