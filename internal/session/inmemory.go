package session

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps sessions in process memory for single-tenant/dev use.
//
// The mutex only keeps the maps consistent; callers that check for an active
// session and then create one are not serialized against each other.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	byOwner  map[string]string
	activeID string
	now      func() time.Time
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

// WithClock overrides the store's notion of now.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		sessions: make(map[string]*Session),
		byOwner:  make(map[string]string),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Mode() string { return "local" }

func (s *InMemoryStore) Save(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = clone(&sess)
	s.byOwner[sess.Owner] = sess.ID
	s.activeID = sess.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	s.expireIfDue(sess)
	return clone(sess), nil
}

func (s *InMemoryStore) GetActive(_ context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == "" {
		return nil, nil
	}
	return s.liveLocked(s.activeID), nil
}

func (s *InMemoryStore) GetActiveForOwner(_ context.Context, owner string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byOwner[owner]
	if !ok {
		return nil, nil
	}
	return s.liveLocked(id), nil
}

func (s *InMemoryStore) SetActive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		s.activeID = id
	}
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	patch.Apply(sess)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(id)
	return nil
}

func (s *InMemoryStore) ClearExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.ExpiredAt(now) {
			s.deleteLocked(id)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemoryStore) Close() error { return nil }

// liveLocked returns a copy of the session if it is still usable. Expired or
// terminal sessions are dropped from the indexes and reported as absent.
func (s *InMemoryStore) liveLocked(id string) *Session {
	sess, ok := s.sessions[id]
	if !ok {
		s.unindexLocked(id, "")
		return nil
	}
	s.expireIfDue(sess)
	if sess.Status == StatusExpired {
		s.unindexLocked(id, sess.Owner)
		return nil
	}
	return clone(sess)
}

func (s *InMemoryStore) expireIfDue(sess *Session) {
	if sess.Status != StatusExpired && sess.ExpiredAt(s.now()) {
		sess.Status = StatusExpired
	}
}

func (s *InMemoryStore) deleteLocked(id string) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessions, id)
	s.unindexLocked(id, sess.Owner)
}

func (s *InMemoryStore) unindexLocked(id, owner string) {
	if s.activeID == id {
		s.activeID = ""
	}
	if owner != "" {
		if s.byOwner[owner] == id {
			delete(s.byOwner, owner)
		}
		return
	}
	for o, sid := range s.byOwner {
		if sid == id {
			delete(s.byOwner, o)
		}
	}
}
