// Package matcher turns a module's entries into a concrete mapping of
// source files to destination paths.
//
// Entries are evaluated in declaration order against the fetched source
// tree. Each entry expands to a set of relative paths (a literal file, a
// directory's contents or a glob), excludes are removed, and every surviving
// path gets a destination under the module base. When a later entry matches
// a path an earlier one already produced, the later one replaces it; this is
// how a broad glob is narrowed by the entries that follow it.
//
// Resolution is pure: home, working directory and OS come from a
// types.Environment value rather than the process.
package matcher
