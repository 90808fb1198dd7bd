// Package buildinfo carries the version stamped into the daybook binary.
package buildinfo

var (
	// Version is set with -ldflags "-X github.com/daybook-dev/daybook/internal/buildinfo.Version=...".
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is the build time.
	Date = "unknown"
)
