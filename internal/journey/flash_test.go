package journey

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactsadmin/internal/session"
)

func TestReplay(t *testing.T) {
	t.Run("prefers flashed value", func(t *testing.T) {
		flash := url.Values{"town": {"Sheffield"}}
		assert.Equal(t, "Sheffield", Replay(flash, "town", "Leeds"))
	})

	t.Run("flashed empty string still wins", func(t *testing.T) {
		flash := url.Values{"town": {""}}
		assert.Equal(t, "", Replay(flash, "town", "Leeds"))
	})

	t.Run("falls back to stored value", func(t *testing.T) {
		assert.Equal(t, "Leeds", Replay(url.Values{}, "town", "Leeds"))
		assert.Equal(t, "Leeds", Replay(nil, "town", "Leeds"))
	})
}

func TestRejectSubmissionAndReplay(t *testing.T) {
	ctx := context.Background()
	sess := session.NewManager(session.NewMemoryBackend()).ForID("session-1")

	raw := url.Values{"town": {"Sheffield"}, "country": {""}}
	errs := url.Values{"country": {"country is required"}}

	req := httptest.NewRequest(http.MethodPost, "/journey/step/abc", strings.NewReader(""))
	rec := httptest.NewRecorder()
	require.NoError(t, RejectSubmission(rec, req, sess, testKind, "abc", "enter-address", raw, errs))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/journey/step/abc", rec.Header().Get("Location"))

	form, popped, err := PopStepFlash(ctx, sess, testKind, "abc", "enter-address")
	require.NoError(t, err)
	assert.Equal(t, raw, form)
	assert.Equal(t, errs, popped)

	// One-shot: a second GET sees nothing.
	form, popped, err = PopStepFlash(ctx, sess, testKind, "abc", "enter-address")
	require.NoError(t, err)
	assert.Nil(t, form)
	assert.Nil(t, popped)
}

func TestFlashScoping(t *testing.T) {
	ctx := context.Background()
	sess := session.NewManager(session.NewMemoryBackend()).ForID("session-1")

	raw := url.Values{"town": {"Sheffield"}}
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(""))
	require.NoError(t, RejectSubmission(httptest.NewRecorder(), req, sess, testKind, "abc", "enter-address", raw, url.Values{}))

	t.Run("different step does not consume it", func(t *testing.T) {
		form, _, err := PopStepFlash(ctx, sess, testKind, "abc", "check-answers")
		require.NoError(t, err)
		assert.Nil(t, form)
	})

	t.Run("different journey does not consume it", func(t *testing.T) {
		form, _, err := PopStepFlash(ctx, sess, testKind, "def", "enter-address")
		require.NoError(t, err)
		assert.Nil(t, form)
	})

	t.Run("owning step consumes it", func(t *testing.T) {
		form, _, err := PopStepFlash(ctx, sess, testKind, "abc", "enter-address")
		require.NoError(t, err)
		assert.Equal(t, raw, form)
	})
}
