// Package view converts engine reports and configurations into plain
// values that every renderer shares. The same values are serialized for
// the json, yaml and toml formats.
package view
