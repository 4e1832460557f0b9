package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/mkuznecovs/billfold/internal/client/cli"
	"github.com/mkuznecovs/billfold/internal/client/config"
	"github.com/mkuznecovs/billfold/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = app.Close() }()

	app.Run(ctx)
}
