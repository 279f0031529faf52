//go:build windows

package bootstrap

import "os"

// writable reports whether the current process may write into dir.
// Windows has no faithful access(2); probe with a temp file instead.
func writable(dir string) bool {
	probe, err := os.CreateTemp(dir, ".vdm-writable-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return true
}
