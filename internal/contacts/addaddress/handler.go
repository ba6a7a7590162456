// Package addaddress implements the add-address wizard for an existing
// contact. The journey has a durable start URL under the contact resource, so
// stale ids restart rather than 404.
package addaddress

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
const Kind = "addAddressJourneys"

const (
	StepEnterAddress = "enter-address"
	StepCheckAnswers = "check-answers"
)

// Payload is the add-address journey's accumulated answers.
type Payload struct {
	Address models.Address `json:"address"`
}

func StartURL(prisonerNumber, contactID string) string {
	return fmt.Sprintf("/prisoner/%s/contacts/manage/%s/address/add/start", prisonerNumber, contactID)
}

func StepURL(prisonerNumber, contactID, step, journeyID string) string {
	return fmt.Sprintf("/prisoner/%s/contacts/manage/%s/address/add/%s/%s", prisonerNumber, contactID, step, journeyID)
}

// Handler owns the add-address journey's step controllers.
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
	h.guard = journey.NewGuard(h.store, sessions, journey.PolicyRestart, func(r *http.Request) string {
		return StartURL(chi.URLParam(r, "prisonerNumber"), chi.URLParam(r, "contactId"))
	}, m, logger)
	return h
}

func (h *Handler) Register(r chi.Router) {
	base := "/prisoner/{prisonerNumber}/contacts/manage/{contactId}/address/add"
	r.Get(base+"/start", h.handleStart)
	r.Get(base+"/enter-address/{journeyId}", h.guard.Require(h.getEnterAddress))
	r.Post(base+"/enter-address/{journeyId}", h.guard.Require(h.postEnterAddress))
	r.Get(base+"/check-answers/{journeyId}", h.guard.Require(h.getCheckAnswers))
	r.Post(base+"/check-answers/{journeyId}", h.guard.Require(h.postCheckAnswers))
	r.Post(base+"/cancel/{journeyId}", h.guard.Require(h.postCancel))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")
	sess := h.sessions.ForRequest(r)

	returnPoint := r.URL.Query().Get("returnUrl")
	if returnPoint == "" {
		returnPoint = fmt.Sprintf("/prisoner/%s/contacts/manage/%s", prisonerNumber, contactID)
	}

	record, err := h.store.Create(ctx, sess, Payload{}, returnPoint)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start add-address journey",
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

	http.Redirect(w, r, StepURL(prisonerNumber, contactID, StepEnterAddress, record.ID), http.StatusFound)
}

type addressForm struct {
	Flat           string `validate:"omitempty,max=30"`
	Premise        string `validate:"omitempty,max=50"`
	Street         string `validate:"omitempty,max=160"`
	Locality       string `validate:"omitempty,max=70"`
	Town           string `validate:"required_without=NoFixedAddress,omitempty,max=70"`
	County         string `validate:"omitempty,max=70"`
	Postcode       string `validate:"omitempty,max=12"`
	Country        string `validate:"required,max=16"`
	NoFixedAddress string `validate:"omitempty,oneof=true false"`
}

func (h *Handler) getEnterAddress(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	flash, errs, err := journey.PopStepFlash(r.Context(), sess, Kind, rec.ID, StepEnterAddress)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to read flash", err))
		return
	}

	stored := rec.Payload.Address
	view := map[string]any{
		"journeyId": rec.ID,
		"form": map[string]string{
			"flat":           journey.Replay(flash, "flat", stored.Flat),
			"premise":        journey.Replay(flash, "premise", stored.Premise),
			"street":         journey.Replay(flash, "street", stored.Street),
			"locality":       journey.Replay(flash, "locality", stored.Locality),
			"town":           journey.Replay(flash, "town", stored.Town),
			"county":         journey.Replay(flash, "county", stored.County),
			"postcode":       journey.Replay(flash, "postcode", stored.Postcode),
			"country":        journey.Replay(flash, "country", stored.Country),
			"noFixedAddress": journey.Replay(flash, "noFixedAddress", strconv.FormatBool(stored.NoFixedAddress)),
		},
	}
	if len(errs) > 0 {
		view["errors"] = errs
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) postEnterAddress(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	form := addressForm{
		Flat:           r.PostForm.Get("flat"),
		Premise:        r.PostForm.Get("premise"),
		Street:         r.PostForm.Get("street"),
		Locality:       r.PostForm.Get("locality"),
		Town:           r.PostForm.Get("town"),
		County:         r.PostForm.Get("county"),
		Postcode:       r.PostForm.Get("postcode"),
		Country:        r.PostForm.Get("country"),
		NoFixedAddress: r.PostForm.Get("noFixedAddress"),
	}
	if errs := forms.Validate(form); errs != nil {
		if err := journey.RejectSubmission(w, r, sess, Kind, rec.ID, StepEnterAddress, r.PostForm, errs); err != nil {
			shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to flash submission", err))
		}
		return
	}

	updated, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		rec.Payload.Address = models.Address{
			Flat:           form.Flat,
			Premise:        form.Premise,
			Street:         form.Street,
			Locality:       form.Locality,
			Town:           form.Town,
			County:         form.County,
			Postcode:       form.Postcode,
			Country:        form.Country,
			NoFixedAddress: form.NoFixedAddress == "true",
		}
	})
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	contactID := chi.URLParam(r, "contactId")
	checkAnswers := StepURL(prisonerNumber, contactID, StepCheckAnswers, rec.ID)
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
			"address": StepURL(prisonerNumber, contactID, StepEnterAddress, rec.ID),
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

	if err := h.contacts.AddContactAddress(ctx, contactID, rec.Payload.Address); err != nil {
		h.logger.ErrorContext(ctx, "failed to add contact address",
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
		"message": {"Address added"},
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
