// Package version exposes build and install version information.
package version

import (
	"os"
	"path/filepath"
	"strings"
)

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X github.com/voltgrid/vdm/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionFileName is the version marker packaged into an install root.
const VersionFileName = "version.txt"

// Resolve returns the runtime version string. A build-time Version takes
// precedence; otherwise the version.txt packaged under the install root is
// read. Falls back to the current Version when the file is missing or empty.
func Resolve(installRoot string) string {
	if Version != "unknown" {
		return Version
	}
	data, err := os.ReadFile(filepath.Join(installRoot, VersionFileName))
	if err != nil {
		return Version
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return Version
	}
	return v
}
