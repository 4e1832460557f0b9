package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/schema"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUserAlreadyExists):
			writeError(w, http.StatusConflict, "username already taken")
		case errors.Is(err, common.ErrInvalidLoginPassword):
			writeError(w, http.StatusBadRequest, "username and password are required")
		default:
			h.log.Error(r.Context(), "register failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": user.ID})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidLoginPassword) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.log.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

type pushRowsRequest struct {
	Rows []schema.Row `json:"rows"`
}

// handlePushRows accepts one table's batch. The batch is validated against
// the shared table registry and applied atomically; any bad row rejects the
// whole batch.
func (h *Handler) handlePushRows(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")
	table, ok := schema.ByName(tableName)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown table: "+tableName)
		return
	}

	var req pushRowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, row := range req.Rows {
		for col := range row {
			if !table.HasColumn(col) {
				writeError(w, http.StatusBadRequest, "unknown column "+col+" in table "+tableName)
				return
			}
		}
	}

	userID := userIDFromContext(r.Context())
	if err := h.rows.UpsertBatch(r.Context(), userID, tableName, req.Rows); err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			writeError(w, http.StatusConflict, "row owned by another account")
		case errors.Is(err, common.ErrBatchRejected):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error(r.Context(), "push failed", "table", tableName, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.log.Info(r.Context(), "batch stored", "table", tableName, "rows", len(req.Rows))
	writeJSON(w, http.StatusOK, map[string]any{"stored": len(req.Rows)})
}

func (h *Handler) handlePullRows(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")
	if _, ok := schema.ByName(tableName); !ok {
		writeError(w, http.StatusBadRequest, "unknown table: "+tableName)
		return
	}

	var since *time.Time
	if raw := r.URL.Query().Get("updated_since"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid updated_since")
			return
		}
		since = &t
	}

	userID := userIDFromContext(r.Context())
	rows, err := h.rows.SelectUpdatedSince(r.Context(), userID, tableName, since)
	if err != nil {
		h.log.Error(r.Context(), "pull failed", "table", tableName, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if rows == nil {
		rows = []schema.Row{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) handlePresignPut(w http.ResponseWriter, r *http.Request) {
	url, key, err := h.receipts.PresignPut(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.log.Error(r.Context(), "presign put failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url, "key": key})
}

func (h *Handler) handlePresignGet(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	url, err := h.receipts.PresignGet(r.Context(), key)
	if err != nil {
		h.log.Error(r.Context(), "presign get failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
