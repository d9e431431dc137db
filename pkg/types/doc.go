// Package types defines the small shared vocabulary used across confman:
// the filesystem interface, the link mode enum and the host environment a
// resolution runs against.
package types
