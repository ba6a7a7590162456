// Package employments implements the update-employments wizard for an
// official contact. The journey edits a working copy of the contact's
// employment list in the session and replaces the persisted list wholesale on
// completion. There is no durable start URL carrying enough state to reseed
// the working copy, so a stale journey id is a 404.
package employments

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contactsadmin/internal/audit"
	"contactsadmin/internal/clients/contactsapi"
	"contactsadmin/internal/contacts/models"
	"contactsadmin/internal/journey"
	"contactsadmin/internal/platform/forms"
	"contactsadmin/internal/platform/metrics"
	"contactsadmin/internal/platform/middleware"
	"contactsadmin/internal/session"
	"contactsadmin/internal/transport/http/shared"
	dErrors "contactsadmin/pkg/domain-errors"
)

// Kind is the session key the journey collection is stored under.
const Kind = "updateEmploymentsJourneys"

const (
	StepEditEmployments = "edit-employments"
	StepCheckAnswers    = "check-answers"
)

// Payload is the working copy of the contact's employment list.
type Payload struct {
	Employments []models.Employment `json:"employments"`
}

func StepURL(prisonerNumber, contactID, step, journeyID string) string {
	return fmt.Sprintf("/prisoner/%s/contacts/manage/%s/employments/%s/%s", prisonerNumber, contactID, step, journeyID)
}

// Handler owns the update-employments journey's step controllers.
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
	h.guard = journey.NewGuard(h.store, sessions, journey.PolicyNotFound, nil, m, logger)
	return h
}

func (h *Handler) Register(r chi.Router) {
	base := "/prisoner/{prisonerNumber}/contacts/manage/{contactId}/employments"
	r.Get(base+"/start", h.handleStart)
	r.Get(base+"/edit-employments/{journeyId}", h.guard.Require(h.getEditEmployments))
	r.Post(base+"/edit-employments/{journeyId}/add", h.guard.Require(h.postAddEmployment))
	r.Post(base+"/edit-employments/{journeyId}/remove", h.guard.Require(h.postRemoveEmployment))
	r.Get(base+"/check-answers/{journeyId}", h.guard.Require(h.getCheckAnswers))
	r.Post(base+"/check-answers/{journeyId}", h.guard.Require(h.postCheckAnswers))
	r.Post(base+"/cancel/{journeyId}", h.guard.Require(h.postCancel))
}

// handleStart seeds the working copy from the persisted employment list.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactParam := chi.URLParam(r, "contactId")
	contactID, err := strconv.ParseInt(contactParam, 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid contact id"))
		return
	}
	sess := h.sessions.ForRequest(r)

	existing, err := h.contacts.GetEmployments(ctx, contactID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load employments",
			"contact_id", contactID,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	returnPoint := r.URL.Query().Get("returnUrl")
	if returnPoint == "" {
		returnPoint = fmt.Sprintf("/prisoner/%s/contacts/manage/%s", prisonerNumber, contactParam)
	}

	record, err := h.store.Create(ctx, sess, Payload{Employments: existing}, returnPoint)
	if err != nil {
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
			Subject:     prisonerNumber,
		})
	}

	http.Redirect(w, r, StepURL(prisonerNumber, contactParam, StepEditEmployments, record.ID), http.StatusFound)
}

type employmentForm struct {
	EmployerID   string `validate:"required,number"`
	EmployerName string `validate:"required,max=100"`
	Active       string `validate:"omitempty,oneof=true false"`
}

func (h *Handler) getEditEmployments(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	flash, errs, err := journey.PopStepFlash(r.Context(), sess, Kind, rec.ID, StepEditEmployments)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to read flash", err))
		return
	}

	view := map[string]any{
		"journeyId":   rec.ID,
		"employments": rec.Payload.Employments,
		"form": map[string]string{
			"employerId":   journey.Replay(flash, "employerId", ""),
			"employerName": journey.Replay(flash, "employerName", ""),
			"active":       journey.Replay(flash, "active", ""),
		},
	}
	if len(errs) > 0 {
		view["errors"] = errs
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) postAddEmployment(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	form := employmentForm{
		EmployerID:   r.PostForm.Get("employerId"),
		EmployerName: r.PostForm.Get("employerName"),
		Active:       r.PostForm.Get("active"),
	}
	if errs := forms.Validate(form); errs != nil {
		if err := journey.RejectSubmission(w, r, sess, Kind, rec.ID, StepEditEmployments, r.PostForm, errs); err != nil {
			shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to flash submission", err))
		}
		return
	}

	employerID, _ := strconv.ParseInt(form.EmployerID, 10, 64)
	if _, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		rec.Payload.Employments = append(rec.Payload.Employments, models.Employment{
			EmployerID:   employerID,
			EmployerName: form.EmployerName,
			Active:       form.Active == "true",
		})
	}); err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	http.Redirect(w, r, r.URL.Path[:len(r.URL.Path)-len("/add")], http.StatusFound)
}

func (h *Handler) postRemoveEmployment(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	employerID, err := strconv.ParseInt(r.PostForm.Get("employerId"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid employer id"))
		return
	}

	if _, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		kept := rec.Payload.Employments[:0]
		for _, e := range rec.Payload.Employments {
			if e.EmployerID != employerID {
				kept = append(kept, e)
			}
		}
		rec.Payload.Employments = kept
	}); err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	http.Redirect(w, r, r.URL.Path[:len(r.URL.Path)-len("/remove")], http.StatusFound)
}

func (h *Handler) getCheckAnswers(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")

	updated, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		rec.StartCheckingAnswers()
	})
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"journeyId": updated.ID,
		"answers":   updated.Payload,
		"changeLinks": map[string]string{
			"employments": StepURL(prisonerNumber, contactID, StepEditEmployments, rec.ID),
		},
	})
}

func (h *Handler) postCheckAnswers(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	contactID, err := strconv.ParseInt(chi.URLParam(r, "contactId"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid contact id"))
		return
	}

	if err := h.contacts.SyncEmployments(ctx, contactID, rec.Payload.Employments); err != nil {
		h.logger.ErrorContext(ctx, "failed to sync employments",
			"contact_id", contactID,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	if err := h.store.Delete(ctx, sess, rec.ID); err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to delete journey", err))
		return
	}
	if h.metrics != nil {
		h.metrics.IncrementJourneysCompleted(Kind)
	}
	if h.audit != nil {
		_ = h.audit.Emit(ctx, audit.Event{
			Username:    middleware.GetUsername(ctx),
			Caseload:    middleware.GetCaseload(ctx),
			JourneyKind: Kind,
			JourneyID:   rec.ID,
			Action:      audit.ActionCompleted,
			Subject:     chi.URLParam(r, "contactId"),
		})
	}
	_ = sess.SetFlash(ctx, journey.BannerFlashKey(Kind), url.Values{
		"message": {"Employment information updated"},
	})

	http.Redirect(w, r, rec.ReturnPoint, http.StatusFound)
}

func (h *Handler) postCancel(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()

	if err := h.store.Delete(ctx, sess, rec.ID); err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to delete journey", err))
		return
	}
	if h.metrics != nil {
		h.metrics.IncrementJourneysCancelled(Kind)
	}
	if h.audit != nil {
		_ = h.audit.Emit(ctx, audit.Event{
			Username:    middleware.GetUsername(ctx),
			Caseload:    middleware.GetCaseload(ctx),
			JourneyKind: Kind,
			JourneyID:   rec.ID,
			Action:      audit.ActionCancelled,
			Subject:     chi.URLParam(r, "contactId"),
		})
	}

	http.Redirect(w, r, rec.ReturnPoint, http.StatusFound)
}
