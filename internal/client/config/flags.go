package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkuznecovs/billfold/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-d string   path to the local database file (default from Config)
//	-i int      online check interval in seconds (default from Config)
//	-t int      request timeout in seconds (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the backend server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
