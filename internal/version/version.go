// Package version carries build metadata injected via -ldflags.
package version

import "fmt"

// Set at build time:
//
//	-ldflags "-X github.com/tokligence/moviegraph/internal/version.Version=v0.2.0"
var (
	Version = "v0.1.0"
	Commit  = "unknown"
	BuiltAt = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	BuiltAt string `json:"built_at"`
}

// Get returns the current build metadata.
func Get() Build {
	return Build{Version: Version, Commit: Commit, BuiltAt: BuiltAt}
}

func (b Build) String() string {
	return fmt.Sprintf("moviegraph %s (commit=%s built_at=%s)", b.Version, b.Commit, b.BuiltAt)
}
