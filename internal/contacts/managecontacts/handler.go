// Package managecontacts implements the manage-contacts search journey. The
// journey keeps the search term and page in the session so pagination and
// back-navigation replay the same results.
package managecontacts

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contactsadmin/internal/audit"
	"contactsadmin/internal/clients/contactsapi"
	"contactsadmin/internal/journey"
	"contactsadmin/internal/platform/forms"
	"contactsadmin/internal/platform/metrics"
	"contactsadmin/internal/platform/middleware"
	"contactsadmin/internal/session"
	"contactsadmin/internal/transport/http/shared"
	dErrors "contactsadmin/pkg/domain-errors"
)

// Kind is the session key the journey collection is stored under.
const Kind = "manageContactsJourneys"

const StepSearch = "search"

// Payload is the search journey's state.
type Payload struct {
	Term string `json:"term,omitempty"`
	Page int    `json:"page,omitempty"`
}

const startPath = "/contacts/manage/start"

func StepURL(step, journeyID string) string {
	return fmt.Sprintf("/contacts/manage/%s/%s", step, journeyID)
}

// Handler owns the manage-contacts journey's step controllers.
type Handler struct {
	logger   *slog.Logger
	sessions *session.Manager
	store    *journey.Store[Payload]
	guard    *journey.Guard[Payload]
	contacts contactsapi.Client
	audit    *audit.Publisher
	metrics  *metrics.Metrics
}

func New(
	sessions *session.Manager,
	contacts contactsapi.Client,
	auditPub *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	storeOpts ...journey.Option[Payload],
) *Handler {
	h := &Handler{
		logger:   logger,
		sessions: sessions,
		contacts: contacts,
		audit:    auditPub,
		metrics:  m,
	}

	opts := []journey.Option[Payload]{
		journey.WithEvictionHook[Payload](func(string) {
			if h.metrics != nil {
				h.metrics.IncrementJourneysEvicted(Kind)
			}
		}),
	}
	h.store = journey.New[Payload](Kind, append(opts, storeOpts...)...)
	h.guard = journey.NewGuard(h.store, sessions, journey.PolicyRestart, func(*http.Request) string {
		return startPath
	}, m, logger)
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get(startPath, h.handleStart)
	r.Get("/contacts/manage/search/{journeyId}", h.guard.Require(h.getSearch))
	r.Post("/contacts/manage/search/{journeyId}", h.guard.Require(h.postSearch))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := h.sessions.ForRequest(r)

	returnPoint := r.URL.Query().Get("returnUrl")
	if returnPoint == "" {
		returnPoint = "/contacts/manage"
	}

	record, err := h.store.Create(ctx, sess, Payload{Page: 1}, returnPoint)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start manage-contacts journey",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to start journey", err))
		return
	}
	if h.metrics != nil {
		h.metrics.IncrementJourneysCreated(Kind)
	}
	if h.audit != nil {
		_ = h.audit.Emit(ctx, audit.Event{
			Username:    middleware.GetUsername(ctx),
			Caseload:    middleware.GetCaseload(ctx),
			JourneyKind: Kind,
			JourneyID:   record.ID,
			Action:      audit.ActionStarted,
		})
	}

	http.Redirect(w, r, StepURL(StepSearch, record.ID), http.StatusFound)
}

type searchForm struct {
	Term string `validate:"required,min=2,max=100"`
	Page string `validate:"omitempty,number"`
}

// getSearch renders the stored term and, once a term exists, the matching
// page of results.
func (h *Handler) getSearch(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	flash, errs, err := journey.PopStepFlash(ctx, sess, Kind, rec.ID, StepSearch)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to read flash", err))
		return
	}

	view := map[string]any{
		"journeyId": rec.ID,
		"form": map[string]string{
			"term": journey.Replay(flash, "term", rec.Payload.Term),
		},
	}
	if len(errs) > 0 {
		view["errors"] = errs
	}

	if rec.Payload.Term != "" {
		results, err := h.contacts.SearchContacts(ctx, rec.Payload.Term, rec.Payload.Page)
		if err != nil {
			h.logger.ErrorContext(ctx, "contact search failed",
				"error", err.Error(),
				"request_id", middleware.GetRequestID(ctx),
			)
			shared.WriteError(w, err)
			return
		}
		view["results"] = results
	}

	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) postSearch(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	form := searchForm{
		Term: r.PostForm.Get("term"),
		Page: r.PostForm.Get("page"),
	}
	if errs := forms.Validate(form); errs != nil {
		if err := journey.RejectSubmission(w, r, sess, Kind, rec.ID, StepSearch, r.PostForm, errs); err != nil {
			shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to flash submission", err))
		}
		return
	}

	page := 1
	if form.Page != "" {
		page, _ = strconv.Atoi(form.Page)
		if page < 1 {
			page = 1
		}
	}

	if _, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		if rec.Payload.Term != form.Term {
			page = 1
		}
		rec.Payload.Term = form.Term
		rec.Payload.Page = page
	}); err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	http.Redirect(w, r, StepURL(StepSearch, rec.ID), http.StatusFound)
}
