package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Session backends and journey
// collections return these (optionally wrapped) so callers can translate them
// into domain errors or guard policies.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the backend
// - ErrConflict: concurrent modification detected
// - ErrUnavailable: backend temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
