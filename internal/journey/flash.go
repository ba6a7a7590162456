package journey

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"contactsadmin/internal/session"
)

// Flash keys are scoped per journey and step so two tabs on different steps
// cannot consume each other's replay values.

// FormFlashKey names the one-shot slot holding a rejected submission's raw
// values for the given step.
func FormFlashKey(kind, journeyID, step string) string {
	return fmt.Sprintf("form:%s:%s:%s", kind, journeyID, step)
}

// ErrorsFlashKey names the one-shot slot holding the validation messages for
// the given step.
func ErrorsFlashKey(kind, journeyID, step string) string {
	return fmt.Sprintf("errors:%s:%s:%s", kind, journeyID, step)
}

// BannerFlashKey names the one-shot slot for the success banner shown on the
// page the user lands on after completing a journey.
func BannerFlashKey(scope string) string {
	return "banner:" + scope
}

// Replay resolves a step field in priority order: the flashed raw submission
// when the prior POST failed validation, otherwise the stored value.
func Replay(flash url.Values, field, stored string) string {
	if flash != nil && flash.Has(field) {
		return flash.Get(field)
	}
	return stored
}

// PopStepFlash consumes the replay values and validation messages flashed for
// a step by a failed POST. Both are nil on a fresh GET.
func PopStepFlash(ctx context.Context, sess *session.Session, kind, journeyID, step string) (form, errs url.Values, err error) {
	form, err = sess.PopFlash(ctx, FormFlashKey(kind, journeyID, step))
	if err != nil {
		return nil, nil, err
	}
	errs, err = sess.PopFlash(ctx, ErrorsFlashKey(kind, journeyID, step))
	if err != nil {
		return nil, nil, err
	}
	return form, errs, nil
}

// RejectSubmission stores a failed submission's raw values and messages in
// the flash channel and sends the user back to the same step, whose GET
// replays them.
func RejectSubmission(w http.ResponseWriter, r *http.Request, sess *session.Session, kind, journeyID, step string, raw, errs url.Values) error {
	ctx := r.Context()
	if err := sess.SetFlash(ctx, FormFlashKey(kind, journeyID, step), raw); err != nil {
		return err
	}
	if err := sess.SetFlash(ctx, ErrorsFlashKey(kind, journeyID, step), errs); err != nil {
		return err
	}
	http.Redirect(w, r, r.URL.Path, http.StatusFound)
	return nil
}
