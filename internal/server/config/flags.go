package config

import (
	"flag"
	"os"

	"github.com/mkuznecovs/billfold/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   bind address for the HTTP endpoint
//	-d string   PostgreSQL DSN
//	-k string   JWT signing secret
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "address and port to bind the server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "JWT signing secret")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
