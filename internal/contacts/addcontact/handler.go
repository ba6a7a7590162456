package addcontact

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contactsadmin/internal/audit"
	"contactsadmin/internal/clients/contactsapi"
	"contactsadmin/internal/clients/prisonersearch"
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

// Handler owns the add-contact journey's step controllers.
type Handler struct {
	logger    *slog.Logger
	sessions  *session.Manager
	store     *journey.Store[Payload]
	guard     *journey.Guard[Payload]
	contacts  contactsapi.Client
	prisoners prisonersearch.Client
	refData   referencedata.Client
	audit     *audit.Publisher
	metrics   *metrics.Metrics
}

// New creates the add-contact Handler. Store options are exposed so tests can
// pin the clock.
func New(
	sessions *session.Manager,
	contacts contactsapi.Client,
	prisoners prisonersearch.Client,
	refData referencedata.Client,
	auditPub *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	storeOpts ...journey.Option[Payload],
) *Handler {
	h := &Handler{
		logger:    logger,
		sessions:  sessions,
		contacts:  contacts,
		prisoners: prisoners,
		refData:   refData,
		audit:     auditPub,
		metrics:   m,
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
		return StartURL(chi.URLParam(r, "prisonerNumber"))
	}, m, logger)
	return h
}

// Register registers the add-contact routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	base := "/prisoner/{prisonerNumber}/contacts/create"
	r.Get(base+"/start", h.handleStart)
	r.Get(base+"/enter-name/{journeyId}", h.guard.Require(h.getEnterName))
	r.Post(base+"/enter-name/{journeyId}", h.guard.Require(h.postEnterName))
	r.Get(base+"/enter-dob/{journeyId}", h.guard.Require(h.getEnterDOB))
	r.Post(base+"/enter-dob/{journeyId}", h.guard.Require(h.postEnterDOB))
	r.Get(base+"/select-relationship-type/{journeyId}", h.guard.Require(h.getRelationshipType))
	r.Post(base+"/select-relationship-type/{journeyId}", h.guard.Require(h.postRelationshipType))
	r.Get(base+"/select-relationship-to-prisoner/{journeyId}", h.guard.Require(h.getRelationshipToPrisoner))
	r.Post(base+"/select-relationship-to-prisoner/{journeyId}", h.guard.Require(h.postRelationshipToPrisoner))
	r.Get(base+"/check-answers/{journeyId}", h.guard.Require(h.getCheckAnswers))
	r.Post(base+"/check-answers/{journeyId}", h.guard.Require(h.postCheckAnswers))
	r.Post(base+"/cancel/{journeyId}", h.guard.Require(h.postCancel))
}

// handleStart creates a fresh journey and redirects to the first step. The
// returnUrl query parameter seeds the cancel destination.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	sess := h.sessions.ForRequest(r)

	returnPoint := r.URL.Query().Get("returnUrl")
	if returnPoint == "" {
		returnPoint = fmt.Sprintf("/prisoner/%s/contacts/list", prisonerNumber)
	}

	record, err := h.store.Create(ctx, sess, Payload{}, returnPoint)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start add-contact journey",
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

	http.Redirect(w, r, StepURL(prisonerNumber, StepEnterName, record.ID), http.StatusFound)
}

type nameForm struct {
	Title       string `validate:"omitempty,max=12"`
	FirstName   string `validate:"required,max=35"`
	MiddleNames string `validate:"omitempty,max=35"`
	LastName    string `validate:"required,max=35"`
}

func (h *Handler) getEnterName(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	flash, errs, err := journey.PopStepFlash(r.Context(), sess, Kind, rec.ID, StepEnterName)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to read flash", err))
		return
	}

	view := map[string]any{
		"journeyId": rec.ID,
		"form": map[string]string{
			"title":       journey.Replay(flash, "title", rec.Payload.Name.Title),
			"firstName":   journey.Replay(flash, "firstName", rec.Payload.Name.FirstName),
			"middleNames": journey.Replay(flash, "middleNames", rec.Payload.Name.MiddleNames),
			"lastName":    journey.Replay(flash, "lastName", rec.Payload.Name.LastName),
		},
	}
	if len(errs) > 0 {
		view["errors"] = errs
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) postEnterName(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	form := nameForm{
		Title:       r.PostForm.Get("title"),
		FirstName:   r.PostForm.Get("firstName"),
		MiddleNames: r.PostForm.Get("middleNames"),
		LastName:    r.PostForm.Get("lastName"),
	}
	if errs := forms.Validate(form); errs != nil {
		if err := journey.RejectSubmission(w, r, sess, Kind, rec.ID, StepEnterName, r.PostForm, errs); err != nil {
			shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to flash submission", err))
		}
		return
	}

	updated, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		rec.Payload.Name = models.Name{
			Title:       form.Title,
			FirstName:   form.FirstName,
			MiddleNames: form.MiddleNames,
			LastName:    form.LastName,
		}
	})
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	next := journey.NextURL(updated.IsCheckingAnswers, false, false, journey.StepURLs{
		Next:         StepURL(prisonerNumber, StepEnterDOB, rec.ID),
		CheckAnswers: StepURL(prisonerNumber, StepCheckAnswers, rec.ID),
	})
	http.Redirect(w, r, next, http.StatusFound)
}

type dobForm struct {
	Known string `validate:"required,oneof=YES NO"`
	Day   string `validate:"required_if=Known YES,omitempty,number"`
	Month string `validate:"required_if=Known YES,omitempty,number"`
	Year  string `validate:"required_if=Known YES,omitempty,number,len=4"`
}

func (h *Handler) getEnterDOB(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	flash, errs, err := journey.PopStepFlash(r.Context(), sess, Kind, rec.ID, StepEnterDOB)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to read flash", err))
		return
	}

	stored := dobForm{}
	if dob := rec.Payload.DateOfBirth; dob != nil {
		if dob.Known {
			stored = dobForm{
				Known: "YES",
				Day:   strconv.Itoa(dob.Day),
				Month: strconv.Itoa(dob.Month),
				Year:  strconv.Itoa(dob.Year),
			}
		} else {
			stored.Known = "NO"
		}
	}

	view := map[string]any{
		"journeyId": rec.ID,
		"form": map[string]string{
			"known": journey.Replay(flash, "known", stored.Known),
			"day":   journey.Replay(flash, "day", stored.Day),
			"month": journey.Replay(flash, "month", stored.Month),
			"year":  journey.Replay(flash, "year", stored.Year),
		},
	}
	if len(errs) > 0 {
		view["errors"] = errs
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) postEnterDOB(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	form := dobForm{
		Known: r.PostForm.Get("known"),
		Day:   r.PostForm.Get("day"),
		Month: r.PostForm.Get("month"),
		Year:  r.PostForm.Get("year"),
	}
	if errs := forms.Validate(form); errs != nil {
		if err := journey.RejectSubmission(w, r, sess, Kind, rec.ID, StepEnterDOB, r.PostForm, errs); err != nil {
			shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to flash submission", err))
		}
		return
	}

	dob := &models.DateOfBirth{Known: form.Known == "YES"}
	if dob.Known {
		dob.Day, _ = strconv.Atoi(form.Day)
		dob.Month, _ = strconv.Atoi(form.Month)
		dob.Year, _ = strconv.Atoi(form.Year)
	}

	updated, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		rec.Payload.DateOfBirth = dob
	})
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	next := journey.NextURL(updated.IsCheckingAnswers, false, false, journey.StepURLs{
		Next:         StepURL(prisonerNumber, StepRelationshipType, rec.ID),
		CheckAnswers: StepURL(prisonerNumber, StepCheckAnswers, rec.ID),
	})
	http.Redirect(w, r, next, http.StatusFound)
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

// postRelationshipType stages the classification. While checking answers a
// change routes to the dependent relationship-to-prisoner step; the confirmed
// classification stays as it was until that step promotes the pending value.
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
	dependent := StepURL(prisonerNumber, StepRelationshipToPrisoner, rec.ID)
	next := journey.NextURL(updated.IsCheckingAnswers, changed, true, journey.StepURLs{
		Next:         dependent,
		CheckAnswers: StepURL(prisonerNumber, StepCheckAnswers, rec.ID),
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

	// The offered codes follow the pending classification when an edit is in
	// flight, so the user picks from the set the new classification allows.
	group := referencedata.RelationshipGroup(rec.Payload.Relationship.EffectiveType())
	codes, err := h.refData.GetGroup(ctx, group)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load relationship codes",
			"group", group,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
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

// postRelationshipToPrisoner confirms the dependent code, promoting any
// pending classification in the same journey update so the confirmed pair
// never goes half-changed.
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

	updated, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		promoted := rec.Payload.Relationship.PendingType != ""
		rec.Payload.Relationship.Confirm(form.RelationshipToPrisoner)
		if promoted && rec.IsCheckingAnswers {
			rec.ResetPreviousAnswers()
		}
	})
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	checkAnswers := StepURL(prisonerNumber, StepCheckAnswers, rec.ID)
	next := journey.NextURL(updated.IsCheckingAnswers, false, false, journey.StepURLs{
		Next:         checkAnswers,
		CheckAnswers: checkAnswers,
	})
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *Handler) getCheckAnswers(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")

	updated, err := h.store.Update(ctx, sess, rec.ID, func(rec *journey.Record[Payload]) {
		rec.StartCheckingAnswers()
	})
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to update journey", err))
		return
	}

	prisoner, err := h.prisoners.GetPrisoner(ctx, prisonerNumber)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load prisoner for check answers",
			"prisoner_number", prisonerNumber,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	// The review page needs two code groups, fetched in one parallel round.
	relationshipGroup := referencedata.RelationshipGroup(updated.Payload.Relationship.Type)
	groups, err := referencedata.GetGroups(ctx, h.refData, referencedata.GroupTitle, relationshipGroup)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load reference data for check answers",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"journeyId": updated.ID,
		"prisoner":  prisoner.Name().Reversed(),
		"contact":   updated.Payload.Name.Reversed(),
		"answers":   updated.Payload,
		"descriptions": map[string]string{
			"title":                  referencedata.Describe(groups[referencedata.GroupTitle], updated.Payload.Name.Title),
			"relationshipToPrisoner": referencedata.Describe(groups[relationshipGroup], updated.Payload.Relationship.ToPrisoner),
		},
		"changeLinks": map[string]string{
			"name":                   StepURL(prisonerNumber, StepEnterName, rec.ID),
			"dateOfBirth":            StepURL(prisonerNumber, StepEnterDOB, rec.ID),
			"relationshipType":       StepURL(prisonerNumber, StepRelationshipType, rec.ID),
			"relationshipToPrisoner": StepURL(prisonerNumber, StepRelationshipToPrisoner, rec.ID),
		},
	})
}

// postCheckAnswers is the journey's final save: persist through the contacts
// API, delete the record, and carry a success banner to the return page.
func (h *Handler) postCheckAnswers(w http.ResponseWriter, r *http.Request, sess *session.Session, rec *journey.Record[Payload]) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	username := middleware.GetUsername(ctx)

	_, err := h.contacts.CreateContact(ctx, contactsapi.CreateContactRequest{
		PrisonerNumber: prisonerNumber,
		Name:           rec.Payload.Name,
		DateOfBirth:    rec.Payload.DateOfBirth,
		Relationship:   rec.Payload.Relationship,
		CreatedBy:      username,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create contact",
			"prisoner_number", prisonerNumber,
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
			Username:    username,
			Caseload:    middleware.GetCaseload(ctx),
			JourneyKind: Kind,
			JourneyID:   rec.ID,
			Action:      audit.ActionCompleted,
			Subject:     prisonerNumber,
		})
	}
	_ = sess.SetFlash(ctx, journey.BannerFlashKey(Kind), url.Values{
		"message": {fmt.Sprintf("%s has been added as a contact", rec.Payload.Name.Reversed())},
	})

	http.Redirect(w, r, rec.ReturnPoint, http.StatusFound)
}

// postCancel deletes the journey and returns the user to where they came
// from. Cancellation is a normal POST action, not an out-of-band signal.
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
			Subject:     chi.URLParam(r, "prisonerNumber"),
		})
	}

	http.Redirect(w, r, rec.ReturnPoint, http.StatusFound)
}
