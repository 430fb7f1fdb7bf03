// Package session persists history screen sessions behind a generation guard.
//
// Every search or selection first takes a new token with NextToken and later
// calls Commit with a session carrying that token. Commit applies only when
// the token is still the latest one issued for the session, so a slow search
// can never overwrite the result of a newer one.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/history/models"
)

// Store is the session persistence contract.
type Store interface {
	NextToken(ctx context.Context, id uuid.UUID) (uint64, error)
	Commit(ctx context.Context, s *models.Session, ttl time.Duration) (bool, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Session, error)
}

// clone copies the session and its slices so stored state never aliases caller state.
func clone(s *models.Session) *models.Session {
	cp := *s
	cp.Candidates = append([]models.Candidate(nil), s.Candidates...)
	cp.Orders = append([]models.Order(nil), s.Orders...)
	if s.Selected != nil {
		sel := *s.Selected
		cp.Selected = &sel
	}
	return &cp
}
