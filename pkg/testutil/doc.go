// Package testutil provides filesystem fixtures and isolated environments
// for confman tests.
//
// Two environment types are available:
//   - EnvMemoryOnly builds everything on an in-memory filesystem; nothing
//     touches the disk and the process environment is left alone.
//   - EnvIsolated lays out real directories under t.TempDir() and points
//     HOME and the CONFMAN_* directory variables at them.
package testutil
