// Package config loads runtime configuration for the MeshMart CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   gateway base URL
//	-u int      parallel uploads (default 4)
//	-b int      download batch size (default 3)
//	-t int      request timeout (seconds)
//	-o string   download directory
//	-d string   local database path
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://gateway.example",
//	  "upload_concurrency": 6,
//	  "request_timeout": "45s",
//	  "download_dir": "/home/me/assets"
//	}
package config
