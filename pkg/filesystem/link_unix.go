//go:build !windows

package filesystem

import (
	"errors"
	"syscall"
)

// Some mounts (FAT, certain network shares) refuse symlink with EPERM.
func linkNotPermitted(err error) bool {
	return errors.Is(err, syscall.EPERM)
}
