// Package config loads, validates, and watches for changes to the gateway's
// own configuration: listen address, persistence backend selection, auth
// settings, and the static stdio backend allow-list.
//
// Configuration is YAML (gopkg.in/yaml.v3), loaded from a path given by
// --config / MCP_GATEWAY_CONFIG, with ${VAR} / ${VAR:-default}
// environment-variable expansion applied to the raw file before
// unmarshalling. Secrets may instead be supplied via *_file fields pointing
// at a mounted file, read by Load and merged in only when the direct field
// is unset.
//
// Watcher uses fsnotify to detect external edits to the resolved config
// file and the registry's JSON snapshot file (file-persistence mode only),
// debouncing bursts of writes and skipping reloads when a file's content
// hash hasn't actually changed.
package config
