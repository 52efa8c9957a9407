// Package config loads, validates, and normalizes bookscout's TOML
// configuration. Defaults cover every field so the tool runs without a
// config file; the session cookie is the only setting most users must
// provide.
package config
