// Package config loads, validates, and normalizes audioscribe configuration.
//
// Configuration lives in a TOML file (default ~/.config/audioscribe/config.toml
// with an audioscribe.toml project-local fallback). Load applies defaults,
// expands ~ in path fields, and validates the result so downstream packages
// can rely on absolute, populated paths.
package config
