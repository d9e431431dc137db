// Package executor deploys resolved mappings onto the filesystem.
//
// For every linked record the executor inspects the destination first:
// an absent destination is created, one that already is what confman would
// create is left alone, and anything else is reported as a conflict and
// never overwritten unless Force is set. Link mode decides whether a
// destination is a symbolic link, a copy, or a link with copy fallback.
//
// Clean is the inverse of Apply: it removes only destinations that are
// exactly what Apply would have produced.
package executor
