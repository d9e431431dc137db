// Package fetch makes module sources available as local directories.
//
// Path sources are validated in place. Git sources are cloned into the
// confman cache, one directory per source identity, and optionally
// pulled on later runs. The Router picks the right fetcher for a source,
// bounds each fetch with a timeout and collapses concurrent fetches of
// the same source into one.
package fetch
