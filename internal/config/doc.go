// Package config loads, normalizes, and validates the shoebox TOML
// configuration. Path fields are tilde-expanded and absolute after Load;
// extension sets are lowercased and dot-prefixed.
package config
