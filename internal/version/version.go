package version

import "fmt"

var (
	// Version is the semantic version of the build, set via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA of the build, or "none".
	Commit = "none"
	// BuildTime is the UTC build timestamp, or "unknown".
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the version with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// UserAgent identifies a catpoint component in outgoing HTTP requests,
// e.g. "catpoint-server/0.1.0 (none)".
func UserAgent(component string) string {
	return fmt.Sprintf("%s/%s (%s)", component, Version, Commit)
}

// LogFields returns the build metadata as logger key/value pairs.
func LogFields() []any {
	return []any{
		"version", Version,
		"commit", Commit,
		"built_at", BuildTime,
	}
}
