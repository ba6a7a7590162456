package journey

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"contactsadmin/internal/platform/metrics"
	"contactsadmin/internal/platform/middleware"
	"contactsadmin/internal/session"
)

// Policy decides the terminal behaviour when a step's journey id does not
// resolve. It is fixed per journey kind, never per request.
type Policy int

const (
	// PolicyRestart redirects to the journey kind's durable start URL. Used
	// by top-level journeys where a missing record most plausibly means the
	// session entry aged out, and starting over is the right recovery.
	PolicyRestart Policy = iota

	// PolicyNotFound responds 404. Used by journeys nested under an
	// independently-addressable resource, where silently restarting would be
	// more confusing than treating the link as stale.
	PolicyNotFound
)

// HandlerFunc is a step handler that runs once the journey is resolved.
type HandlerFunc[P any] func(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *Record[P])

// Guard resolves the {journeyId} path parameter against the store before a
// step controller does any work.
type Guard[P any] struct {
	store    *Store[P]
	sessions *session.Manager
	policy   Policy
	startURL func(*http.Request) string
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewGuard builds the guard for one journey kind. startURL derives the kind's
// start URL from the request's path parameters; it is only consulted under
// PolicyRestart and may be nil otherwise. m may be nil.
func NewGuard[P any](store *Store[P], sessions *session.Manager, policy Policy, startURL func(*http.Request) string, m *metrics.Metrics, logger *slog.Logger) *Guard[P] {
	return &Guard[P]{
		store:    store,
		sessions: sessions,
		policy:   policy,
		startURL: startURL,
		metrics:  m,
		logger:   logger,
	}
}

// Require wraps a step handler with the journey precondition. Resolving the
// record also refreshes its recency, so merely visiting a step keeps the
// journey alive.
func (g *Guard[P]) Require(next HandlerFunc[P]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if g.metrics != nil && r.Method == http.MethodPost {
			start := time.Now()
			defer func() {
				g.metrics.ObserveStepSubmit(g.store.Kind(), stepFromPath(r.URL.Path), time.Since(start))
			}()
		}
		sess := g.sessions.ForRequest(r)
		journeyID := chi.URLParam(r, "journeyId")

		record, ok, err := g.store.Get(ctx, sess, journeyID)
		if err != nil {
			g.logger.ErrorContext(ctx, "failed to resolve journey",
				"kind", g.store.Kind(),
				"journey_id", journeyID,
				"error", err.Error(),
				"request_id", middleware.GetRequestID(ctx),
			)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !ok {
			g.logger.InfoContext(ctx, "journey not in session",
				"kind", g.store.Kind(),
				"journey_id", journeyID,
				"request_id", middleware.GetRequestID(ctx),
			)
			if g.policy == PolicyRestart {
				http.Redirect(w, r, g.startURL(r), http.StatusFound)
				return
			}
			http.NotFound(w, r)
			return
		}

		next(w, r, sess, record)
	}
}

// stepFromPath extracts the step segment from a ".../<step>/{journeyId}"
// route, tolerating action suffixes like ".../{journeyId}/add".
func stepFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(parts) - 1; i > 0; i-- {
		if len(parts[i]) == 36 && strings.Count(parts[i], "-") == 4 {
			return parts[i-1]
		}
	}
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return ""
}
