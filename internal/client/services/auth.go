package services

import (
	"context"

	"github.com/mkuznecovs/billfold/internal/logging"
)

// SessionStore is the slice of the remote store the auth flow needs.
type SessionStore interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Logout()
	HasActiveSession() bool
}

// AuthService manages the backend session. All data operations keep working
// without one; only sync requires it.
type AuthService struct {
	remote SessionStore
	syncer Syncer
	log    logging.Logger
}

func NewAuthService(remote SessionStore, syncer Syncer, log logging.Logger) *AuthService {
	return &AuthService{remote: remote, syncer: syncer, log: log}
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	return s.remote.Register(ctx, username, password)
}

// Login opens a session and immediately requests a sync pass, so edits made
// before logging in are flushed right away.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	if err := s.remote.Login(ctx, username, password); err != nil {
		return err
	}
	requestSync(s.log, s.syncer)
	return nil
}

func (s *AuthService) Logout() {
	s.remote.Logout()
}

func (s *AuthService) LoggedIn() bool {
	return s.remote.HasActiveSession()
}
