// Package shared holds the response helpers every journey handler uses, so
// error envelopes and view-model encoding stay consistent across kinds.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "contactsadmin/pkg/domain-errors"
)

// WriteJSON encodes a view-model with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError centralizes domain error translation to HTTP responses. Keeping
// it here ensures consistent JSON error envelopes.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": string(code),
	})
}
