// Package paths provides centralized path handling for confman.
//
// It follows the XDG Base Directory specification and resolves the
// directories confman reads from and writes to:
//
//   - Config: $XDG_CONFIG_HOME/confman (config.yaml, included fragments, init clones)
//   - Cache: $XDG_CACHE_HOME/confman (cloned module sources under sources/)
//   - State: $XDG_STATE_HOME/confman (log file)
//
// # Environment Variables
//
//   - CONFMAN_CONFIG: Explicit config file, used when --config is not given
//   - CONFMAN_CONFIG_DIR: Override the config directory
//   - CONFMAN_CACHE_DIR: Override the cache directory
//   - CONFMAN_STATE_DIR: Override the state directory
//
// # Usage
//
//	p, err := paths.New()
//	if err != nil {
//	    return err
//	}
//	cfgFile := p.FindConfigFile("")          // first existing candidate, or ""
//	clone := p.SourceCachePath("github.com/u/dots")
package paths
