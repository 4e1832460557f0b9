package config

import "time"

// Config holds runtime settings for the billfold CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP API.
//   - DatabasePath: path to the local sqlite database file.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: per-request budget for backend calls.
type Config struct {
	ServerEndpointAddr  string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "billfold.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
