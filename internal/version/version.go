// Package version holds build metadata, stamped at link time via
// -ldflags "-X github.com/laraib28/todo-web/internal/version.Version=...".
package version

import "runtime"

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GoVersion returns the Go runtime version string.
func GoVersion() string { return runtime.Version() }
