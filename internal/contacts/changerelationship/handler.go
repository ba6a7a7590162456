// Package changerelationship implements the change-relationship-type wizard
// for an existing prisoner-contact relationship. The journey is nested under
// an independently-addressable resource, so a stale journey id is a 404: the
// relationship page itself is still reachable and silently restarting the
// edit would be more confusing than treating the link as dead.
package changerelationship

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contactsadmin/internal/audit"
	"contactsadmin/internal/clients/contactsapi"
	"contactsadmin/internal/clients/referencedata"
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
const Kind = "changeRelationshipJourneys"

const (
	StepRelationshipType       = "select-relationship-type"
	StepRelationshipToPrisoner = "select-relationship-to-prisoner"
	StepCheckAnswers           = "check-answers"
)

// Payload is the change-relationship journey's state: the relationship as it
// stands, edited in place with the pending-value discipline.
type Payload struct {
	Relationship models.Relationship `json:"relationship"`
}

func StepURL(prisonerNumber, contactID, prisonerContactID, step, journeyID string) string {
	return fmt.Sprintf("/prisoner/%s/contacts/manage/%s/relationship/%s/change/%s/%s",
		prisonerNumber, contactID, prisonerContactID, step, journeyID)
}

// Handler owns the change-relationship journey's step controllers.
type Handler struct {
	logger   *slog.Logger
	sessions *session.Manager
	store    *journey.Store[Payload]
	guard    *journey.Guard[Payload]
	contacts contactsapi.Client
	refData  referencedata.Client
	audit    *audit.Publisher
	metrics  *metrics.Metrics
}

func New(
	sessions *session.Manager,
	contacts contactsapi.Client,
	refData referencedata.Client,
	auditPub *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	storeOpts ...journey.Option[Payload],
) *Handler {
	h := &Handler{
		logger:   logger,
		sessions: sessions,
		contacts: contacts,
		refData:  refData,
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
	base := "/prisoner/{prisonerNumber}/contacts/manage/{contactId}/relationship/{prisonerContactId}/change"
	r.Get(base+"/start", h.handleStart)
	r.Get(base+"/select-relationship-type/{journeyId}", h.guard.Require(h.getRelationshipType))
	r.Post(base+"/select-relationship-type/{journeyId}", h.guard.Require(h.postRelationshipType))
	r.Get(base+"/select-relationship-to-prisoner/{journeyId}", h.guard.Require(h.getRelationshipToPrisoner))
	r.Post(base+"/select-relationship-to-prisoner/{journeyId}", h.guard.Require(h.postRelationshipToPrisoner))
	r.Get(base+"/check-answers/{journeyId}", h.guard.Require(h.getCheckAnswers))
	r.Post(base+"/check-answers/{journeyId}", h.guard.Require(h.postCheckAnswers))
	r.Post(base+"/cancel/{journeyId}", h.guard.Require(h.postCancel))
}

// handleStart seeds the journey from the relationship as persisted and drops
// straight into checking-answers mode: every edit from here is a review-page
// edit, so the pending-value discipline applies from the first submission.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")
	prisonerContactID, err := strconv.ParseInt(chi.URLParam(r, "prisonerContactId"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid prisoner contact id"))
		return
	}
	sess := h.sessions.ForRequest(r)

	existing, err := h.contacts.GetRelationship(ctx, prisonerContactID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load relationship",
			"prisoner_contact_id", prisonerContactID,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	returnPoint := r.URL.Query().Get("returnUrl")
	if returnPoint == "" {
		returnPoint = fmt.Sprintf("/prisoner/%s/contacts/manage/%s/relationship/%d", prisonerNumber, contactID, prisonerContactID)
	}

	record, err := h.store.Create(ctx, sess, Payload{Relationship: existing}, returnPoint)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to start journey", err))
		return
	}
	if _, err := h.store.Update(ctx, sess, record.ID, func(rec *journey.Record[Payload]) {
		rec.StartCheckingAnswers()
	}); err != nil {
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

	http.Redirect(w, r, StepURL(prisonerNumber, contactID, chi.URLParam(r, "prisonerContactId"), StepCheckAnswers, record.ID), http.StatusFound)
}

type relationshipTypeForm struct {
	RelationshipType string `validate:"required,oneof=S O"`
}

func (h *Handler) getRelationshipType(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	flash, errs, err := journey.PopStepFlash(r.Context(), sess, Kind, rec.ID, StepRelationshipType)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to read flash", err))
		return
	}

	view := map[string]any{
		"journeyId": rec.ID,
		"form": map[string]string{
			"relationshipType": journey.Replay(flash, "relationshipType", rec.Payload.Relationship.EffectiveType()),
		},
	}
	if len(errs) > 0 {
		view["errors"] = errs
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) postRelationshipType(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	form := relationshipTypeForm{RelationshipType: r.PostForm.Get("relationshipType")}
	if errs := forms.Validate(form); errs != nil {
		if err := journey.RejectSubmission(w, r, sess, Kind, rec.ID, StepRelationshipType, r.PostForm, errs); err != nil {
			shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to flash submission", err))
		}
		return
	}

	changed := false
	updated, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		changed = rec.Payload.Relationship.Stage(form.RelationshipType)
	})
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")
	prisonerContactID := chi.URLParam(r, "prisonerContactId")
	dependent := StepURL(prisonerNumber, contactID, prisonerContactID, StepRelationshipToPrisoner, rec.ID)
	next := journey.NextURL(updated.IsCheckingAnswers, changed, true, journey.StepURLs{
		Next:         dependent,
		CheckAnswers: StepURL(prisonerNumber, contactID, prisonerContactID, StepCheckAnswers, rec.ID),
		Dependent:    dependent,
	})
	http.Redirect(w, r, next, http.StatusFound)
}

type relationshipToPrisonerForm struct {
	RelationshipToPrisoner string `validate:"required,max=12"`
}

func (h *Handler) getRelationshipToPrisoner(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	flash, errs, err := journey.PopStepFlash(ctx, sess, Kind, rec.ID, StepRelationshipToPrisoner)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to read flash", err))
		return
	}

	group := referencedata.RelationshipGroup(rec.Payload.Relationship.EffectiveType())
	codes, err := h.refData.GetGroup(ctx, group)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	view := map[string]any{
		"journeyId": rec.ID,
		"options":   codes,
		"form": map[string]string{
			"relationshipToPrisoner": journey.Replay(flash, "relationshipToPrisoner", rec.Payload.Relationship.ToPrisoner),
		},
	}
	if len(errs) > 0 {
		view["errors"] = errs
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) postRelationshipToPrisoner(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	form := relationshipToPrisonerForm{RelationshipToPrisoner: r.PostForm.Get("relationshipToPrisoner")}
	if errs := forms.Validate(form); errs != nil {
		if err := journey.RejectSubmission(w, r, sess, Kind, rec.ID, StepRelationshipToPrisoner, r.PostForm, errs); err != nil {
			shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to flash submission", err))
		}
		return
	}

	if _, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		promoted := rec.Payload.Relationship.PendingType != ""
		rec.Payload.Relationship.Confirm(form.RelationshipToPrisoner)
		if promoted {
			rec.ResetPreviousAnswers()
		}
	}); err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")
	prisonerContactID := chi.URLParam(r, "prisonerContactId")
	http.Redirect(w, r, StepURL(prisonerNumber, contactID, prisonerContactID, StepCheckAnswers, rec.ID), http.StatusFound)
}

func (h *Handler) getCheckAnswers(w http.ResponseWriter, r *http.Request, _ *session.Session, rec *journey.Record[Payload]) {
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")
	prisonerContactID := chi.URLParam(r, "prisonerContactId")

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"journeyId": rec.ID,
		"answers":   rec.Payload.Relationship,
		"changeLinks": map[string]string{
			"relationshipType":       StepURL(prisonerNumber, contactID, prisonerContactID, StepRelationshipType, rec.ID),
			"relationshipToPrisoner": StepURL(prisonerNumber, contactID, prisonerContactID, StepRelationshipToPrisoner, rec.ID),
		},
	})
}

func (h *Handler) postCheckAnswers(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	prisonerContactID, err := strconv.ParseInt(chi.URLParam(r, "prisonerContactId"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid prisoner contact id"))
		return
	}

	if err := h.contacts.UpdateContactRelationship(ctx, prisonerContactID, rec.Payload.Relationship); err != nil {
		h.logger.ErrorContext(ctx, "failed to update relationship",
			"prisoner_contact_id", prisonerContactID,
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
			Subject:     chi.URLParam(r, "prisonerContactId"),
		})
	}
	_ = sess.SetFlash(ctx, journey.BannerFlashKey(Kind), url.Values{
		"message": {"Relationship updated"},
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
			Subject:     chi.URLParam(r, "prisonerContactId"),
		})
	}

	http.Redirect(w, r, rec.ReturnPoint, http.StatusFound)
}
