package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/history/models"
	"backoffice/pkg/platform/sentinel"
)

type entry struct {
	session   *models.Session
	expiresAt time.Time // zero means no expiry
}

// InMemory stores sessions in process memory. Suitable for a single instance.
type InMemory struct {
	mu       sync.Mutex
	tokens   map[uuid.UUID]uint64
	sessions map[uuid.UUID]entry
	now      func() time.Time
}

// InMemoryOption configures an InMemory store.
type InMemoryOption func(*InMemory)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemory) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		tokens:   make(map[uuid.UUID]uint64),
		sessions: make(map[uuid.UUID]entry),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) NextToken(_ context.Context, id uuid.UUID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[id]++
	return s.tokens[id], nil
}

func (s *InMemory) Commit(_ context.Context, sess *models.Session, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.Token == 0 || s.tokens[sess.ID] != sess.Token {
		return false, nil
	}
	e := entry{session: clone(sess)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.sessions[sess.ID] = e
	return true, nil
}

func (s *InMemory) Find(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.sessions, id)
		return nil, sentinel.ErrNotFound
	}
	return clone(e.session), nil
}
