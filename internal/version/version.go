// Package version centralizes build identification.
package version

const (
	// Version is the current semantic version of LSI.
	Version = "0.1.0"

	// BuildDate is set during build time (use -ldflags).
	BuildDate = "development"

	// GitCommit is set during build time (use -ldflags).
	GitCommit = "unknown"
)

// Info returns the version string.
func Info() string {
	return Version
}

// FullInfo returns detailed version information.
func FullInfo() string {
	return "Lightweight Symbol Index " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
}
