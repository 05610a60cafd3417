// Package version exposes build metadata injected through -ldflags.
package version

//nolint:gochecknoglobals // Overridden at link time with -ldflags "-X".
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the VCS revision the binary was built from.
	Commit = "none"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Full returns version, commit and build time in one line.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}

// UserAgent returns the User-Agent sent with every provider request.
func UserAgent() string {
	return "progress-sync/" + Version
}
