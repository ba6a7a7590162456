package testutil

import (
	"context"
	"net/http"

	"contactsadmin/internal/platform/middleware"
)

// WithSessionID adds a session ID to the request context, simulating what the
// auth middleware does for authenticated requests.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeySessionID, sessionID)
	return req.WithContext(ctx)
}

// WithAuth adds username and session ID to the request context. This is the
// typical state for an authenticated request.
func WithAuth(req *http.Request, username, sessionID string) *http.Request {
	ctx := req.Context()
	if username != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyUsername, username)
	}
	if sessionID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeySessionID, sessionID)
	}
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
