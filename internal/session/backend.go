// Package session models the authenticated user's server-side session: a
// key-value store scoped per session id, holding one journey collection per
// journey kind plus one-shot flash values. The package assumes get/set
// semantics only; expiry and replication belong to the backend.
package session

import "context"

// Backend persists session values. Implementations must treat a missing key
// as a normal outcome (ok=false), not an error.
type Backend interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, bool, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
}
