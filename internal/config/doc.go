// Package config loads, normalizes, and validates the TOML configuration
// used by the patchforge CLI and pipeline.
//
// Load resolves the config path (explicit flag, then
// ~/.config/patchforge/config.toml, then ./patchforge.toml), decodes TOML over
// repository defaults, expands ~ in every path field, and validates the
// result. Missing files are not an error; defaults apply.
package config
