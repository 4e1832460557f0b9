package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/schema"
)

// HTTPStore implements Store over the backend's HTTP/JSON API.
type HTTPStore struct {
	baseURL string
	client  *http.Client

	mu          sync.RWMutex
	accessToken string
}

// NewHTTPStore returns a store talking to baseURL (e.g. "http://127.0.0.1:8080").
// timeout bounds every single request, including sync batches.
func NewHTTPStore(baseURL string, timeout time.Duration) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPStore) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return s.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", body, nil)
}

func (s *HTTPStore) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", body, &resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.mu.Unlock()
	return nil
}

func (s *HTTPStore) Logout() {
	s.mu.Lock()
	s.accessToken = ""
	s.mu.Unlock()
}

func (s *HTTPStore) HasActiveSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}

func (s *HTTPStore) Ping(ctx context.Context) error {
	return s.doJSON(ctx, http.MethodGet, "/api/v1/ping", nil, nil)
}

func (s *HTTPStore) Upsert(ctx context.Context, table string, rows []schema.Row) error {
	body := map[string]any{"rows": rows}
	return s.doJSON(ctx, http.MethodPost, "/api/v1/rows/"+url.PathEscape(table), body, nil)
}

func (s *HTTPStore) SelectUpdatedSince(ctx context.Context, table string, since *time.Time) ([]schema.Row, error) {
	path := "/api/v1/rows/" + url.PathEscape(table)
	if since != nil {
		path += "?updated_since=" + url.QueryEscape(since.UTC().Format(time.RFC3339Nano))
	}

	var resp struct {
		Rows []schema.Row `json:"rows"`
	}
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (s *HTTPStore) PresignReceiptPut(ctx context.Context) (string, string, error) {
	var resp struct {
		URL string `json:"url"`
		Key string `json:"key"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/api/v1/receipts/presign-put", nil, &resp); err != nil {
		return "", "", err
	}
	return resp.URL, resp.Key, nil
}

func (s *HTTPStore) PresignReceiptGet(ctx context.Context, key string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	path := "/api/v1/receipts/presign-get?key=" + url.QueryEscape(key)
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// doJSON performs one request and decodes the response into result (when
// non-nil). HTTP error statuses are mapped to common sentinels so callers
// can branch with errors.Is.
func (s *HTTPStore) doJSON(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return mapStatus(resp.StatusCode, data)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func mapStatus(status int, body []byte) error {
	msg := serverMessage(body)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrBatchRejected, msg)
	default:
		return fmt.Errorf("server error: status %d: %s", status, msg)
	}
}

func serverMessage(body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(body)
}
