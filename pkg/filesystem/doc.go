// Package filesystem provides filesystem implementations for confman.
//
// This package contains implementations of the types.FS interface: the
// standard OS filesystem used at runtime and an afero-backed one used by
// tests. Both report missing symlink support as types.ErrLinkUnsupported so
// callers can fall back to copying.
package filesystem
