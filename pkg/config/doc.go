// Package config loads confman's configuration.
//
// A config file (YAML or TOML) declares the global link mode, optional
// include fragments, named profiles and the ordered module list. Loading
// layers built-in defaults, the file itself and CONFMAN_* environment
// variables with koanf, then validates the result into module values.
//
// Errors that concern the whole run (unparseable files, include cycles,
// missing or duplicate module names) fail Load. Errors that concern only
// one module, such as an unclassifiable source or a bad entry, are kept on
// the Config and surface when that module is processed.
package config
