// Package config loads runtime configuration for the trophyshop CLI client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. TROPHYSHOP_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string    base URL of the trophyshop server
//	-db string   path of the local SQLite cache
//	-timeout int request timeout (seconds)
//	-w int       cache freshness window (seconds)
//	-l string    log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "10m"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "cache_path": "trophyshop-cache.db",
//	  "request_timeout": "15s",
//	  "cache_freshness_window": "10m"
//	}
package config
