// Package api exposes the backend HTTP/JSON surface: auth, the generic rows
// sync endpoints and receipt presigning.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkuznecovs/billfold/internal/logging"
	"github.com/mkuznecovs/billfold/internal/schema"
	"github.com/mkuznecovs/billfold/internal/server/models"
)

// UserService is the account surface the API needs.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// RowStore is the sync row store surface the API needs.
type RowStore interface {
	UpsertBatch(ctx context.Context, userID, table string, batch []schema.Row) error
	SelectUpdatedSince(ctx context.Context, userID, table string, since *time.Time) ([]schema.Row, error)
}

// ReceiptService issues presigned receipt URLs.
type ReceiptService interface {
	PresignPut(ctx context.Context, userID string) (url, key string, err error)
	PresignGet(ctx context.Context, key string) (string, error)
}

type Handler struct {
	users     UserService
	rows      RowStore
	receipts  ReceiptService
	jwtSecret []byte
	log       logging.Logger
}

func NewHandler(users UserService, rows RowStore, receipts ReceiptService, jwtSecret []byte, log logging.Logger) *Handler {
	return &Handler{users: users, rows: rows, receipts: receipts, jwtSecret: jwtSecret, log: log}
}

// Router builds the chi router with all routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", h.handlePing)
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			r.Post("/rows/{table}", h.handlePushRows)
			r.Get("/rows/{table}", h.handlePullRows)
			r.Post("/receipts/presign-put", h.handlePresignPut)
			r.Get("/receipts/presign-get", h.handlePresignGet)
		})
	})

	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start).String())
	})
}
