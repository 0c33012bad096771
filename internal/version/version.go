package version

import "runtime"

// Build information. Populated at build-time via ldflags:
//
//	-X github.com/zgpcy/aws-cost-explorer-connector/internal/version.Version=v1.2.3
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
	}
}

// String renders the build information on one line
func String() string {
	return Version + " (commit " + GitCommit + ", built " + BuildDate + ", " + runtime.Version() + ")"
}
