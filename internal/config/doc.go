// Package config loads, normalizes, and validates compressr configuration data.
//
// It supplies the tool defaults (h264, no GPU, 25 MB, 240 kbps audio), expands
// user paths including tilde shortcuts, and reads TOML files from the standard
// locations. The Config type carries every knob the encode loop, the progress
// display, and the CLI need so downstream code never parses flags or files on
// its own.
//
// Always obtain settings through this package so callers receive canonical
// codec/vendor names, expanded paths, and clear validation errors.
package config
