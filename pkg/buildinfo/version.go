// Package buildinfo carries the version stamped into the shaderport binary.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/shaderport/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/shaderport/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/shaderport/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/shaderport
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// Commit is the source revision.
	Commit = "none"
	// Date is the UTC build time.
	Date = "unknown"
)

// Revision returns Commit, or the VCS revision recorded by the Go
// toolchain when Commit was not stamped.
func Revision() string {
	if Commit != "none" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return Commit
}

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Revision(), Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Revision(), Date)
}
