package session

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

// BackendSuite runs the same contract against every backend implementation.
type BackendSuite struct {
	suite.Suite
	ctx        context.Context
	backend    Backend
	newBackend func(t *testing.T) Backend
}

func TestMemoryBackendSuite(t *testing.T) {
	suite.Run(t, &BackendSuite{
		newBackend: func(*testing.T) Backend { return NewMemoryBackend() },
	})
}

func TestRedisBackendSuite(t *testing.T) {
	suite.Run(t, &BackendSuite{
		newBackend: func(t *testing.T) Backend {
			srv := miniredis.RunT(t)
			client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisBackend(client)
		},
	})
}

func (s *BackendSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = s.newBackend(s.T())
}

func (s *BackendSuite) TestGetSetDelete() {
	s.Run("absent key", func() {
		_, ok, err := s.backend.Get(s.ctx, "sid", "missing")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("set then get", func() {
		s.Require().NoError(s.backend.Set(s.ctx, "sid", "k", []byte(`{"a":1}`)))
		value, ok, err := s.backend.Get(s.ctx, "sid", "k")
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal([]byte(`{"a":1}`), value)
	})

	s.Run("overwrite", func() {
		s.Require().NoError(s.backend.Set(s.ctx, "sid", "k", []byte("1")))
		s.Require().NoError(s.backend.Set(s.ctx, "sid", "k", []byte("2")))
		value, ok, err := s.backend.Get(s.ctx, "sid", "k")
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal([]byte("2"), value)
	})

	s.Run("keys are scoped per session", func() {
		s.Require().NoError(s.backend.Set(s.ctx, "sid-1", "k", []byte("1")))
		_, ok, err := s.backend.Get(s.ctx, "sid-2", "k")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("delete removes the key", func() {
		s.Require().NoError(s.backend.Set(s.ctx, "sid", "gone", []byte("1")))
		s.Require().NoError(s.backend.Delete(s.ctx, "sid", "gone"))
		_, ok, err := s.backend.Get(s.ctx, "sid", "gone")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("deleting an absent key is a no-op", func() {
		s.Require().NoError(s.backend.Delete(s.ctx, "sid", "never-set"))
	})
}

func TestRedisBackendTTL(t *testing.T) {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	backend := NewRedisBackend(client)
	ctx := context.Background()

	if err := backend.Set(ctx, "sid", "k", []byte("v")); err != nil {
		t.Fatal(err)
	}

	// Each write refreshes the whole session's TTL.
	srv.FastForward(sessionTTL - time.Hour)
	if err := backend.Set(ctx, "sid", "other", []byte("v")); err != nil {
		t.Fatal(err)
	}
	srv.FastForward(sessionTTL - time.Hour)
	if _, ok, _ := backend.Get(ctx, "sid", "k"); !ok {
		t.Fatal("expected key to survive while the session stays active")
	}

	// An idle session ages out entirely.
	srv.FastForward(sessionTTL + time.Minute)
	if _, ok, _ := backend.Get(ctx, "sid", "k"); ok {
		t.Fatal("expected idle session to expire")
	}
}

type SessionSuite struct {
	suite.Suite
	ctx  context.Context
	sess *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	s.sess = NewManager(NewMemoryBackend()).ForID("session-1")
}

func (s *SessionSuite) TestValues() {
	type value struct {
		Count int `json:"count"`
	}

	s.Run("round trips JSON values", func() {
		s.Require().NoError(s.sess.Set(s.ctx, "v", value{Count: 3}))

		var got value
		ok, err := s.sess.Get(s.ctx, "v", &got)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal(3, got.Count)
	})

	s.Run("absent key leaves the target untouched", func() {
		got := value{Count: 9}
		ok, err := s.sess.Get(s.ctx, "absent", &got)
		s.Require().NoError(err)
		s.False(ok)
		s.Equal(9, got.Count)
	})
}

func (s *SessionSuite) TestFlash() {
	s.Run("pop consumes the value", func() {
		values := url.Values{"town": {"Sheffield"}}
		s.Require().NoError(s.sess.SetFlash(s.ctx, "form:step", values))

		popped, err := s.sess.PopFlash(s.ctx, "form:step")
		s.Require().NoError(err)
		s.Equal(values, popped)

		popped, err = s.sess.PopFlash(s.ctx, "form:step")
		s.Require().NoError(err)
		s.Nil(popped)
	})

	s.Run("pop of an absent key is nil", func() {
		popped, err := s.sess.PopFlash(s.ctx, "never-set")
		s.Require().NoError(err)
		s.Nil(popped)
	})
}
