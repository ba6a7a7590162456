package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"contactsadmin/internal/platform/middleware"
)

// Manager hands out per-request Session views over the configured backend.
type Manager struct {
	backend Backend
}

func NewManager(backend Backend) *Manager {
	return &Manager{backend: backend}
}

// ForRequest resolves the request's session from the authenticated session id.
// The returned Session is an explicit parameter for handlers rather than
// process-wide state, so each request's ownership is visible at call sites.
func (m *Manager) ForRequest(r *http.Request) *Session {
	return m.ForID(middleware.GetSessionID(r.Context()))
}

// ForID builds a Session for a known session id. Used by tests.
func (m *Manager) ForID(sessionID string) *Session {
	return &Session{id: sessionID, backend: m.backend}
}

// Session is one user's server-side session. Values are JSON-encoded and
// written through to the backend on every Set.
type Session struct {
	id      string
	backend Backend
}

// ID returns the session id the values are scoped to.
func (s *Session) ID() string { return s.id }

// Get unmarshals the value stored under key into v. Returns false when the
// key is absent.
func (s *Session) Get(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.backend.Get(ctx, s.id, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode session value %q: %w", key, err)
	}
	return true, nil
}

// Set marshals v and writes it through to the backend.
func (s *Session) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session value %q: %w", key, err)
	}
	return s.backend.Set(ctx, s.id, key, raw)
}

// Delete removes the value stored under key. Deleting an absent key is a
// no-op.
func (s *Session) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.id, key)
}

// Flash values are one-shot: written by one request, consumed by the next.
// Step controllers use them to replay a rejected submission's raw values and
// to carry success banners across the completion redirect.

const flashKeyPrefix = "flash:"

// SetFlash stores one-shot form values under key.
func (s *Session) SetFlash(ctx context.Context, key string, values url.Values) error {
	return s.Set(ctx, flashKeyPrefix+key, values)
}

// PopFlash returns and clears the one-shot values under key. Returns nil when
// nothing was flashed.
func (s *Session) PopFlash(ctx context.Context, key string) (url.Values, error) {
	var values url.Values
	ok, err := s.Get(ctx, flashKeyPrefix+key, &values)
	if err != nil || !ok {
		return nil, err
	}
	if err := s.Delete(ctx, flashKeyPrefix+key); err != nil {
		return nil, err
	}
	return values, nil
}
