package journey

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactsadmin/internal/session"
	"contactsadmin/pkg/platform/sentinel"
)

const testKind = "testJourneys"

type testPayload struct {
	Value string `json:"value"`
}

type StoreSuite struct {
	suite.Suite
	ctx      context.Context
	sessions *session.Manager
	sess     *session.Session
	now      time.Time
	evicted  []string
	store    *Store[testPayload]
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.sessions = session.NewManager(session.NewMemoryBackend())
	s.sess = s.sessions.ForID("session-1")
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.evicted = nil
	s.store = New(testKind,
		WithClock[testPayload](func() time.Time { return s.now }),
		WithEvictionHook[testPayload](func(id string) { s.evicted = append(s.evicted, id) }),
	)
}

// seed writes a collection with chosen ids and timestamps, bypassing Create's
// id generation so eviction order is observable by name.
func (s *StoreSuite) seed(records map[string]time.Time) {
	collection := Collection[testPayload]{}
	for id, touched := range records {
		collection[id] = &Record[testPayload]{ID: id, LastTouched: touched}
	}
	s.Require().NoError(s.sess.Set(s.ctx, testKind, collection))
}

func (s *StoreSuite) collection() Collection[testPayload] {
	collection := Collection[testPayload]{}
	_, err := s.sess.Get(s.ctx, testKind, &collection)
	s.Require().NoError(err)
	return collection
}

func (s *StoreSuite) TestCreate() {
	s.Run("assigns id and recency", func() {
		record, err := s.store.Create(s.ctx, s.sess, testPayload{Value: "a"}, "/return")
		s.Require().NoError(err)
		s.NotEmpty(record.ID)
		s.Equal(s.now, record.LastTouched)
		s.Equal("/return", record.ReturnPoint)
		s.False(record.IsCheckingAnswers)
		s.Nil(record.PreviousAnswers)
	})

	s.Run("persists to the session", func() {
		record, err := s.store.Create(s.ctx, s.sess, testPayload{Value: "b"}, "")
		s.Require().NoError(err)

		stored, ok := s.collection()[record.ID]
		s.Require().True(ok)
		s.Equal("b", stored.Payload.Value)
	})

	s.Run("collections are independent per session", func() {
		other := s.sessions.ForID("session-2")
		record, err := s.store.Create(s.ctx, other, testPayload{}, "")
		s.Require().NoError(err)

		_, ok := s.collection()[record.ID]
		s.False(ok)
	})

	s.Run("collections are independent per kind", func() {
		otherStore := New[testPayload]("otherJourneys",
			WithClock[testPayload](func() time.Time { return s.now }))
		record, err := otherStore.Create(s.ctx, s.sess, testPayload{}, "")
		s.Require().NoError(err)

		_, ok := s.collection()[record.ID]
		s.False(ok)
	})
}

func (s *StoreSuite) TestEviction() {
	base := s.now

	s.Run("sixth create evicts the least recently touched", func() {
		s.seed(map[string]time.Time{
			"oldest":      base.Add(-5 * time.Hour),
			"old":         base.Add(-4 * time.Hour),
			"middle-aged": base.Add(-3 * time.Hour),
			"young":       base.Add(-2 * time.Hour),
			"youngest":    base.Add(-1 * time.Hour),
		})

		record, err := s.store.Create(s.ctx, s.sess, testPayload{}, "")
		s.Require().NoError(err)

		s.Equal([]string{"oldest"}, s.evicted)
		collection := s.collection()
		s.Len(collection, 5)
		s.Contains(collection, record.ID)
		for _, id := range []string{"old", "middle-aged", "young", "youngest"} {
			s.Contains(collection, id)
		}
	})

	s.Run("at capacity without overflow nothing is evicted", func() {
		s.evicted = nil
		s.seed(map[string]time.Time{
			"a": base.Add(-4 * time.Hour),
			"b": base.Add(-3 * time.Hour),
			"c": base.Add(-2 * time.Hour),
			"d": base.Add(-1 * time.Hour),
		})

		_, err := s.store.Create(s.ctx, s.sess, testPayload{}, "")
		s.Require().NoError(err)

		s.Empty(s.evicted)
		s.Len(s.collection(), 5)
	})

	s.Run("get refreshes recency and changes eviction order", func() {
		s.evicted = nil
		s.seed(map[string]time.Time{
			"stale":     base.Add(-5 * time.Hour),
			"refreshed": base.Add(-6 * time.Hour),
			"c":         base.Add(-3 * time.Hour),
			"d":         base.Add(-2 * time.Hour),
			"e":         base.Add(-1 * time.Hour),
		})

		// refreshed was the oldest until this Get touches it.
		_, ok, err := s.store.Get(s.ctx, s.sess, "refreshed")
		s.Require().NoError(err)
		s.Require().True(ok)

		_, err = s.store.Create(s.ctx, s.sess, testPayload{}, "")
		s.Require().NoError(err)

		s.Equal([]string{"stale"}, s.evicted)
		s.Contains(s.collection(), "refreshed")
	})

	s.Run("identical timestamps evict the smaller id", func() {
		s.evicted = nil
		tied := base.Add(-5 * time.Hour)
		s.seed(map[string]time.Time{
			"aaa": tied,
			"bbb": tied,
			"c":   base.Add(-3 * time.Hour),
			"d":   base.Add(-2 * time.Hour),
			"e":   base.Add(-1 * time.Hour),
		})

		_, err := s.store.Create(s.ctx, s.sess, testPayload{}, "")
		s.Require().NoError(err)

		s.Equal([]string{"aaa"}, s.evicted)
		s.Contains(s.collection(), "bbb")
	})

	s.Run("reduced capacity respected", func() {
		s.evicted = nil
		small := New(testKind,
			WithClock[testPayload](func() time.Time { return s.now }),
			WithCapacity[testPayload](1),
			WithEvictionHook[testPayload](func(id string) { s.evicted = append(s.evicted, id) }),
		)
		sess := s.sessions.ForID("session-small")

		first, err := small.Create(s.ctx, sess, testPayload{}, "")
		s.Require().NoError(err)
		s.now = s.now.Add(time.Minute)
		second, err := small.Create(s.ctx, sess, testPayload{}, "")
		s.Require().NoError(err)

		s.Equal([]string{first.ID}, s.evicted)
		_, ok, err := small.Get(s.ctx, sess, second.ID)
		s.Require().NoError(err)
		s.True(ok)
	})
}

func (s *StoreSuite) TestGet() {
	s.Run("absent id is ok=false, not an error", func() {
		record, ok, err := s.store.Get(s.ctx, s.sess, "missing")
		s.Require().NoError(err)
		s.False(ok)
		s.Nil(record)
	})

	s.Run("returns the record and refreshes recency", func() {
		created, err := s.store.Create(s.ctx, s.sess, testPayload{Value: "x"}, "")
		s.Require().NoError(err)

		s.now = s.now.Add(10 * time.Minute)
		record, ok, err := s.store.Get(s.ctx, s.sess, created.ID)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal("x", record.Payload.Value)
		s.Equal(s.now, record.LastTouched)

		s.Equal(s.now, s.collection()[created.ID].LastTouched)
	})
}

func (s *StoreSuite) TestUpdate() {
	s.Run("mutates, refreshes recency and persists", func() {
		created, err := s.store.Create(s.ctx, s.sess, testPayload{Value: "before"}, "")
		s.Require().NoError(err)

		s.now = s.now.Add(time.Minute)
		updated, err := s.store.Update(s.ctx, s.sess, created.ID, func(rec *Record[testPayload]) {
			rec.Payload.Value = "after"
		})
		s.Require().NoError(err)
		s.Equal("after", updated.Payload.Value)
		s.Equal(s.now, updated.LastTouched)

		s.Equal("after", s.collection()[created.ID].Payload.Value)
	})

	s.Run("absent id is an error", func() {
		_, err := s.store.Update(s.ctx, s.sess, "missing", func(*Record[testPayload]) {})
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreSuite) TestDelete() {
	s.Run("removes the record", func() {
		created, err := s.store.Create(s.ctx, s.sess, testPayload{}, "")
		s.Require().NoError(err)

		s.Require().NoError(s.store.Delete(s.ctx, s.sess, created.ID))

		_, ok, err := s.store.Get(s.ctx, s.sess, created.ID)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("absent id is a no-op", func() {
		s.Require().NoError(s.store.Delete(s.ctx, s.sess, "missing"))
	})
}

func (s *StoreSuite) TestCheckingAnswers() {
	s.Run("snapshot captured once", func() {
		record := &Record[testPayload]{Payload: testPayload{Value: "first"}}
		record.StartCheckingAnswers()
		s.Require().NotNil(record.PreviousAnswers)
		s.Equal("first", record.PreviousAnswers.Value)

		record.Payload.Value = "second"
		record.StartCheckingAnswers()
		s.Equal("first", record.PreviousAnswers.Value)
	})

	s.Run("reset recaptures the snapshot", func() {
		record := &Record[testPayload]{Payload: testPayload{Value: "first"}}
		record.StartCheckingAnswers()
		record.Payload.Value = "second"
		record.ResetPreviousAnswers()
		s.Equal("second", record.PreviousAnswers.Value)
	})

	s.Run("snapshot survives the session round trip", func() {
		created, err := s.store.Create(s.ctx, s.sess, testPayload{Value: "v"}, "")
		s.Require().NoError(err)
		_, err = s.store.Update(s.ctx, s.sess, created.ID, func(rec *Record[testPayload]) {
			rec.StartCheckingAnswers()
		})
		s.Require().NoError(err)

		record, ok, err := s.store.Get(s.ctx, s.sess, created.ID)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.True(record.IsCheckingAnswers)
		s.Require().NotNil(record.PreviousAnswers)
		s.Equal("v", record.PreviousAnswers.Value)
	})
}
