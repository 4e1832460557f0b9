// Package server initializes and runs the backend application: it opens the
// database, applies migrations, wires the services and serves the HTTP API
// with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkuznecovs/billfold/internal/logging"
	"github.com/mkuznecovs/billfold/internal/server/api"
	"github.com/mkuznecovs/billfold/internal/server/config"
	"github.com/mkuznecovs/billfold/internal/server/receipts"
	rowsrepo "github.com/mkuznecovs/billfold/internal/server/repositories/rows"
	usersrepo "github.com/mkuznecovs/billfold/internal/server/repositories/users"
	"github.com/mkuznecovs/billfold/internal/server/storage"
	"github.com/mkuznecovs/billfold/internal/server/users"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler *api.Handler
	closeDB func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := storage.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := storage.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userService := users.NewService(usersrepo.NewPostgresRepository(db), []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
	rowStore := rowsrepo.NewPostgresRepository(db)
	receiptService := receipts.NewService(cfg)

	handler := api.NewHandler(userService, rowStore, receiptService, []byte(cfg.SecretKey), logger)

	return &App{config: cfg, logger: logger, handler: handler, closeDB: db.Close}, nil
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()
	defer func() { _ = app.closeDB() }()

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
