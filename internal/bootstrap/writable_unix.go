//go:build !windows

package bootstrap

import "golang.org/x/sys/unix"

// writable reports whether the current process may write into dir.
func writable(dir string) bool {
	return unix.Access(dir, unix.W_OK) == nil
}
