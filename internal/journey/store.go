package journey

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contactsadmin/internal/session"
	"contactsadmin/pkg/platform/sentinel"
)

// DefaultCapacity bounds how many in-flight journeys of one kind a session
// may hold. Creating a sixth evicts the least-recently-touched record.
const DefaultCapacity = 5

// Store provides create/get/update/delete over one journey kind's collection.
// The collection itself lives in the request's session; the store holds only
// the kind key and policy, so a single Store value serves every session.
type Store[P any] struct {
	kind     string
	capacity int
	now      func() time.Time
	onEvict  func(id string)
}

// Option configures a Store.
type Option[P any] func(*Store[P])

// WithClock overrides the time source. Tests use this to control eviction
// order precisely.
func WithClock[P any](now func() time.Time) Option[P] {
	return func(s *Store[P]) { s.now = now }
}

// WithCapacity overrides the collection capacity.
func WithCapacity[P any](capacity int) Option[P] {
	return func(s *Store[P]) { s.capacity = capacity }
}

// WithEvictionHook registers a callback invoked with the id of every evicted
// record, so handlers can count evictions without the store knowing about
// metrics.
func WithEvictionHook[P any](fn func(id string)) Option[P] {
	return func(s *Store[P]) { s.onEvict = fn }
}

// New creates a Store for one journey kind. The kind doubles as the session
// key the collection is stored under (e.g. "addContactJourneys").
func New[P any](kind string, opts ...Option[P]) *Store[P] {
	s := &Store[P]{
		kind:     kind,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the collection key this store operates on.
func (s *Store[P]) Kind() string { return s.kind }

func (s *Store[P]) load(ctx context.Context, sess *session.Session) (Collection[P], error) {
	collection := Collection[P]{}
	if _, err := sess.Get(ctx, s.kind, &collection); err != nil {
		return nil, fmt.Errorf("load %s: %w", s.kind, err)
	}
	return collection, nil
}

func (s *Store[P]) save(ctx context.Context, sess *session.Session, collection Collection[P]) error {
	if err := sess.Set(ctx, s.kind, collection); err != nil {
		return fmt.Errorf("save %s: %w", s.kind, err)
	}
	return nil
}

// Create inserts a new record and returns it. When the insert pushes the
// collection over capacity, the record with the oldest LastTouched is evicted;
// ties break on the smaller id so exactly one record goes per create.
func (s *Store[P]) Create(ctx context.Context, sess *session.Session, payload P, returnPoint string) (*Record[P], error) {
	collection, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}

	record := &Record[P]{
		ID:          uuid.NewString(),
		LastTouched: s.now(),
		ReturnPoint: returnPoint,
		Payload:     payload,
	}
	collection[record.ID] = record

	if len(collection) > s.capacity {
		evictID := ""
		for id, candidate := range collection {
			if evictID == "" {
				evictID = id
				continue
			}
			oldest := collection[evictID]
			if candidate.LastTouched.Before(oldest.LastTouched) ||
				(candidate.LastTouched.Equal(oldest.LastTouched) && id < evictID) {
				evictID = id
			}
		}
		delete(collection, evictID)
		if s.onEvict != nil {
			s.onEvict(evictID)
		}
	}

	if err := s.save(ctx, sess, collection); err != nil {
		return nil, err
	}
	return record, nil
}

// Get returns the record and refreshes its recency. Absence is a normal
// outcome (ok=false), never an error; the guard decides what to do with it.
func (s *Store[P]) Get(ctx context.Context, sess *session.Session, id string) (*Record[P], bool, error) {
	collection, err := s.load(ctx, sess)
	if err != nil {
		return nil, false, err
	}
	record, ok := collection[id]
	if !ok {
		return nil, false, nil
	}
	record.LastTouched = s.now()
	if err := s.save(ctx, sess, collection); err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// Update applies mutate to the record and refreshes its recency. The guard
// must already have established presence, so absence here is a caller error
// reported as sentinel.ErrNotFound.
func (s *Store[P]) Update(ctx context.Context, sess *session.Session, id string, mutate func(*Record[P])) (*Record[P], error) {
	collection, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	record, ok := collection[id]
	if !ok {
		return nil, fmt.Errorf("update %s %q: %w", s.kind, id, sentinel.ErrNotFound)
	}
	mutate(record)
	record.LastTouched = s.now()
	if err := s.save(ctx, sess, collection); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes the record. Deleting an absent id is a no-op.
func (s *Store[P]) Delete(ctx context.Context, sess *session.Session, id string) error {
	collection, err := s.load(ctx, sess)
	if err != nil {
		return err
	}
	if _, ok := collection[id]; !ok {
		return nil
	}
	delete(collection, id)
	return s.save(ctx, sess, collection)
}
