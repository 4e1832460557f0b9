package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mkuznecovs/billfold/internal/flagx"
	"github.com/mkuznecovs/billfold/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c or -config flags. When no file is given the function is a no-op;
// read or unmarshal errors panic, since a present-but-broken config file is
// an operator mistake that must not be silently ignored.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
