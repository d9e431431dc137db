//go:build windows

package filesystem

import (
	"errors"

	"golang.org/x/sys/windows"
)

// Creating symlinks needs Developer Mode or SeCreateSymbolicLinkPrivilege.
func linkNotPermitted(err error) bool {
	return errors.Is(err, windows.ERROR_PRIVILEGE_NOT_HELD)
}
