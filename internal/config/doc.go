// Package config loads gemnote's TOML configuration.
//
// # Overview
//
// gemnote runs fine without any configuration file. The file only exists to
// tune the LAN sweep, the entry store and logging. Credentials and the
// discovered endpoint are not configuration; they live in the prefs package
// because gemnote writes them at runtime.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use $GEMNOTE_CONFIG when set
//  3. Otherwise, use ~/.config/gemnote/config.toml (default)
//  4. If the config file doesn't exist, fall back to defaults
//  5. Apply GEMNOTE_API_KEY, GEMNOTE_BASE_URL and GEMNOTE_SUBNET
//
// # Default Values
//
//   - api_port: 31010 (the companion API proxy)
//   - scan_concurrency: 50 probes in flight
//   - probe_timeout: 2s
//   - request_timeout: 10s
//   - data_dir: ~/.local/share/gemnote
//   - max_entries: 50 (also the hard limit)
//   - preview_length: 100
//   - poll_interval: 2s
//   - log_level: info
//
// # TOML Format
//
//	api_port = 31010
//	scan_concurrency = 50
//	probe_timeout = "2s"
//	subnet = "192.168.1"
//	data_dir = "~/.local/share/gemnote"
//
// Durations use Go duration syntax. Non-positive numbers and durations are
// ignored in favour of defaults. max_entries above 50 is clamped.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than a
// missing file, TOML syntax errors and unparseable durations.
package config
