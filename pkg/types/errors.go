package types

import "errors"

// ErrLinkUnsupported is returned by FS implementations that cannot create
// symbolic links on the current platform or backing store.
var ErrLinkUnsupported = errors.New("symbolic links are not supported")
