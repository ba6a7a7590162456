// Package addrestriction implements the add-restriction wizard for a
// prisoner-contact relationship. Restrictions attach to the relationship, not
// the contact, so the journey is addressed by prisonerContactId.
package addrestriction

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
const Kind = "addRestrictionJourneys"

const (
	StepEnterRestriction = "enter-restriction"
	StepCheckAnswers     = "check-answers"
)

// Payload is the add-restriction journey's accumulated answers.
type Payload struct {
	Restriction models.Restriction `json:"restriction"`
}

func StartURL(prisonerNumber, contactID, prisonerContactID string) string {
	return fmt.Sprintf("/prisoner/%s/contacts/manage/%s/relationship/%s/restriction/add/start",
		prisonerNumber, contactID, prisonerContactID)
}

func StepURL(prisonerNumber, contactID, prisonerContactID, step, journeyID string) string {
	return fmt.Sprintf("/prisoner/%s/contacts/manage/%s/relationship/%s/restriction/add/%s/%s",
		prisonerNumber, contactID, prisonerContactID, step, journeyID)
}

// Handler owns the add-restriction journey's step controllers.
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
	h.guard = journey.NewGuard(h.store, sessions, journey.PolicyRestart, func(r *http.Request) string {
		return StartURL(
			chi.URLParam(r, "prisonerNumber"),
			chi.URLParam(r, "contactId"),
			chi.URLParam(r, "prisonerContactId"),
		)
	}, m, logger)
	return h
}

func (h *Handler) Register(r chi.Router) {
	base := "/prisoner/{prisonerNumber}/contacts/manage/{contactId}/relationship/{prisonerContactId}/restriction/add"
	r.Get(base+"/start", h.handleStart)
	r.Get(base+"/enter-restriction/{journeyId}", h.guard.Require(h.getEnterRestriction))
	r.Post(base+"/enter-restriction/{journeyId}", h.guard.Require(h.postEnterRestriction))
	r.Get(base+"/check-answers/{journeyId}", h.guard.Require(h.getCheckAnswers))
	r.Post(base+"/check-answers/{journeyId}", h.guard.Require(h.postCheckAnswers))
	r.Post(base+"/cancel/{journeyId}", h.guard.Require(h.postCancel))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")
	prisonerContactID := chi.URLParam(r, "prisonerContactId")
	sess := h.sessions.ForRequest(r)

	returnPoint := r.URL.Query().Get("returnUrl")
	if returnPoint == "" {
		returnPoint = fmt.Sprintf("/prisoner/%s/contacts/manage/%s/relationship/%s", prisonerNumber, contactID, prisonerContactID)
	}

	record, err := h.store.Create(ctx, sess, Payload{}, returnPoint)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start add-restriction journey",
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
			Subject:     prisonerNumber,
		})
	}

	http.Redirect(w, r, StepURL(prisonerNumber, contactID, prisonerContactID, StepEnterRestriction, record.ID), http.StatusFound)
}

type restrictionForm struct {
	Type       string `validate:"required,max=12"`
	StartDate  string `validate:"required,datetime=2006-01-02"`
	ExpiryDate string `validate:"omitempty,datetime=2006-01-02"`
	Comments   string `validate:"omitempty,max=240"`
}

func (h *Handler) getEnterRestriction(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	flash, errs, err := journey.PopStepFlash(ctx, sess, Kind, rec.ID, StepEnterRestriction)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to read flash", err))
		return
	}

	types, err := h.refData.GetGroup(ctx, referencedata.GroupRestrictionType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	stored := rec.Payload.Restriction
	view := map[string]any{
		"journeyId": rec.ID,
		"options":   types,
		"form": map[string]string{
			"type":       journey.Replay(flash, "type", stored.Type),
			"startDate":  journey.Replay(flash, "startDate", stored.StartDate),
			"expiryDate": journey.Replay(flash, "expiryDate", stored.ExpiryDate),
			"comments":   journey.Replay(flash, "comments", stored.Comments),
		},
	}
	if len(errs) > 0 {
		view["errors"] = errs
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) postEnterRestriction(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	form := restrictionForm{
		Type:       r.PostForm.Get("type"),
		StartDate:  r.PostForm.Get("startDate"),
		ExpiryDate: r.PostForm.Get("expiryDate"),
		Comments:   r.PostForm.Get("comments"),
	}
	if errs := forms.Validate(form); errs != nil {
		if err := journey.RejectSubmission(w, r, sess, Kind, rec.ID, StepEnterRestriction, r.PostForm, errs); err != nil {
			shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to flash submission", err))
		}
		return
	}

	updated, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		rec.Payload.Restriction = models.Restriction{
			Type:       form.Type,
			StartDate:  form.StartDate,
			ExpiryDate: form.ExpiryDate,
			Comments:   form.Comments,
		}
	})
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")
	prisonerContactID := chi.URLParam(r, "prisonerContactId")
	checkAnswers := StepURL(prisonerNumber, contactID, prisonerContactID, StepCheckAnswers, rec.ID)
	next := journey.NextURL(updated.IsCheckingAnswers, false, false, journey.StepURLs{
		Next:         checkAnswers,
		CheckAnswers: checkAnswers,
	})
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *Handler) getCheckAnswers(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")
	prisonerContactID := chi.URLParam(r, "prisonerContactId")

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
			"restriction": StepURL(prisonerNumber, contactID, prisonerContactID, StepEnterRestriction, rec.ID),
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

	if err := h.contacts.AddRestriction(ctx, prisonerContactID, rec.Payload.Restriction); err != nil {
		h.logger.ErrorContext(ctx, "failed to add restriction",
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
		"message": {"Restriction added"},
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
