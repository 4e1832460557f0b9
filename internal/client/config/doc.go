// Package config loads runtime configuration for the billfold CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP API
//	-d string   path to the local database file
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "database_path": "billfold.db",
//	  "online_check_interval": "3s",
//	  "request_timeout": "30s"
//	}
package config
