// Package config loads, normalizes, and validates bidsmap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the knobs the
// generate and place commands share: default naming policy and session,
// materialization method, extra classifier skip patterns, logging, and the
// placement journal.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
