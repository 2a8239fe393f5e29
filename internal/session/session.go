// Package session holds the signed-in identity of one client: the user, its
// token, and the default headers sent with every request. Both fields are
// persisted so a later process can restore them.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/user"
)

const (
	// UserKey holds the signed-in user's public record.
	UserKey = "user"
	// TokenKey holds the signed-in user's token.
	TokenKey = "token"

	AuthorizationHeader = "Authorization"
)

// Session is safe for concurrent use.
type Session struct {
	kv *kvstore.Adapter

	mu      sync.RWMutex
	user    *user.Public
	token   string
	headers map[string]string
}

// New returns an empty session backed by kv. Call Restore to load a
// previously persisted login.
func New(kv *kvstore.Adapter) *Session {
	return &Session{kv: kv, headers: map[string]string{}}
}

// Restore loads the persisted user and token. An unreadable user record is
// treated as absent. When a token is present the Authorization header is
// installed.
func (s *Session) Restore(ctx context.Context) {
	u := kvstore.Read[*user.Public](ctx, s.kv, UserKey, nil)
	tok := kvstore.Read(ctx, s.kv, TokenKey, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.token = tok
	if tok != "" {
		s.headers[AuthorizationHeader] = bearer(tok)
	}
}

// Login records u and tok, persists both and installs the Authorization
// header. On a persistence error the in-memory session is left unchanged.
func (s *Session) Login(ctx context.Context, u user.Public, tok string) error {
	unlock := s.kv.Lock(UserKey, TokenKey)
	defer unlock()

	// token first: a failed user write must not leave the new user paired
	// with an older token.
	if err := kvstore.Write(ctx, s.kv, TokenKey, tok); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}
	if err := kvstore.Write(ctx, s.kv, UserKey, u); err != nil {
		if rmErr := kvstore.Remove(ctx, s.kv, UserKey); rmErr != nil {
			slog.Error("failed to clear stale session user", "err", rmErr)
		}
		return fmt.Errorf("failed to persist session user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.token = tok
	s.headers[AuthorizationHeader] = bearer(tok)
	return nil
}

// Logout clears the session, its persisted keys and the Authorization
// header. Logging out twice is harmless.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	delete(s.headers, AuthorizationHeader)
	s.mu.Unlock()

	unlock := s.kv.Lock(UserKey, TokenKey)
	defer unlock()

	if err := kvstore.Remove(ctx, s.kv, UserKey); err != nil {
		return fmt.Errorf("failed to clear session user: %w", err)
	}
	if err := kvstore.Remove(ctx, s.kv, TokenKey); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *user.Public {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the signed-in token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// LoggedIn reports whether a token is held.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Header returns a default header value, or "".
func (s *Session) Header(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headers[name]
}

// Headers returns a copy of all default headers.
func (s *Session) Headers() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.headers)
}

// PersistedToken reads the token straight from the store, bypassing the
// in-memory state.
func (s *Session) PersistedToken(ctx context.Context) string {
	return kvstore.Read(ctx, s.kv, TokenKey, "")
}

func bearer(tok string) string {
	return "Bearer " + tok
}
