// Package config loads Moor's server configuration from an optional JSON
// file with MOOR_* environment overlays, and resolves the OS-specific
// default data directory.
//
// The anchoring limits (batch size, chain tag and note lengths) are NOT
// configuration: they are compiled into internal/anchor and immutable.
package config
