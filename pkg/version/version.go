// Package version exposes build information stamped in at link time.
package version

import "runtime"

// AppName is the canonical binary name.
const AppName = "memkeep"

// Set via -ldflags "-X github.com/memkeep/memkeep/pkg/version.Version=...".
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GoVersion = runtime.Version()
)

// Info returns all build information as a flat map, handy for logging a
// startup banner.
func Info() map[string]string {
	return map[string]string{
		"app":       AppName,
		"version":   Version,
		"buildTime": BuildTime,
		"gitCommit": GitCommit,
		"goVersion": GoVersion,
	}
}
