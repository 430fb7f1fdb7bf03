// Package service orchestrates history searches: it fetches both backend
// collections, runs the matcher and keeps the operator's session current.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"backoffice/internal/history/matcher"
	"backoffice/internal/history/metrics"
	"backoffice/internal/history/models"
	"backoffice/internal/history/ports"
	"backoffice/internal/platform/config"
	dErrors "backoffice/pkg/domain-errors"
	"backoffice/pkg/platform/sentinel"
)

const tracerName = "backoffice/internal/history/service"

// SessionStore persists sessions behind a generation token.
type SessionStore interface {
	NextToken(ctx context.Context, id uuid.UUID) (uint64, error)
	Commit(ctx context.Context, s *models.Session, ttl time.Duration) (bool, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Session, error)
}

// Service runs searches and selections for the history screen.
type Service struct {
	clients ports.ClientSource
	orders  ports.OrderSource
	store   SessionStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	ttl     time.Duration
	now     func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithSessionTTL sets how long an idle session survives. Non-positive keeps the default.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(clients ports.ClientSource, orders ports.OrderSource, store SessionStore, opts ...Option) *Service {
	s := &Service{
		clients: clients,
		orders:  orders,
		store:   store,
		logger:  slog.New(slog.DiscardHandler),
		tracer:  otel.Tracer(tracerName),
		ttl:     config.DefaultSessionTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search resolves query into candidates for the given session, creating the
// session when sessionID is uuid.Nil. A single candidate is selected
// automatically and its history resolved from the orders fetched here.
// If a newer search or selection started on the same session meanwhile, the
// result is discarded and a conflict is returned.
func (s *Service) Search(ctx context.Context, sessionID uuid.UUID, query string) (*models.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "history.Search")
	defer span.End()

	term := strings.TrimSpace(query)
	if term == "" {
		s.metrics.IncrementSearch(metrics.OutcomeInvalid)
		return nil, dErrors.New(dErrors.CodeValidation, "query is required")
	}
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}
	span.SetAttributes(attribute.String("session_id", sessionID.String()))

	token, err := s.store.NextToken(ctx, sessionID)
	if err != nil {
		s.fail(ctx, span, err, "failed to start search", "session_id", sessionID)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start search")
	}

	snap := s.gather(ctx, true, true)
	outcome := matcher.Reconcile(term, snap.clients, snap.orders)
	s.metrics.AddRuleHits(outcome.RuleHits)
	s.metrics.ObserveCandidates(len(outcome.Candidates))

	sess := &models.Session{
		ID:         sessionID,
		Token:      token,
		Query:      term,
		Candidates: outcome.Candidates,
		Orders:     []models.Order{},
		UpdatedAt:  s.now(),
	}

	var history *models.History
	if len(outcome.Candidates) == 1 {
		only := outcome.Candidates[0]
		resolved := matcher.ResolveOrders(only, snap.orders, term)
		selected := only.Identity
		sess.Selected = &selected
		sess.Orders = resolved
		history = models.NewHistory(only, resolved)
		history.Degraded = snap.degraded
	}

	if err := s.commit(ctx, sess, "search superseded by a newer request"); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.metrics.IncrementSearch(metrics.OutcomeSuperseded)
			s.logger.InfoContext(ctx, "search superseded",
				"session_id", sessionID,
				"token", token,
			)
		} else {
			s.fail(ctx, span, err, "failed to save search", "session_id", sessionID)
		}
		return nil, err
	}

	s.metrics.IncrementSearch(searchOutcome(len(outcome.Candidates), snap.degraded))
	span.SetAttributes(attribute.Int("candidates", len(outcome.Candidates)))
	s.logger.InfoContext(ctx, "history search completed",
		"session_id", sessionID,
		"query_hash", hashQuery(term),
		"candidates", len(outcome.Candidates),
		"auto_selected", history != nil,
		"degraded", snap.degraded,
	)

	return &models.SearchResult{
		SessionID:  sessionID,
		Query:      term,
		Candidates: outcome.Candidates,
		History:    history,
		Degraded:   snap.degraded,
	}, nil
}

// Select pins one of the session's candidates and resolves its history
// against a fresh copy of the orders.
func (s *Service) Select(ctx context.Context, sessionID uuid.UUID, id models.Identity) (*models.History, error) {
	ctx, span := s.tracer.Start(ctx, "history.Select")
	defer span.End()
	span.SetAttributes(
		attribute.String("session_id", sessionID.String()),
		attribute.String("candidate_kind", string(id.Kind)),
	)

	// Token before read: a search saved after the read holds a newer token.
	token, err := s.store.NextToken(ctx, sessionID)
	if err != nil {
		s.fail(ctx, span, err, "failed to start selection", "session_id", sessionID)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start selection")
	}

	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	candidate, ok := sess.Candidate(id)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found in session")
	}

	snap := s.gather(ctx, false, true)
	resolved := matcher.ResolveOrders(candidate, snap.orders, sess.Query)

	next := *sess
	next.Token = token
	next.Selected = &candidate.Identity
	next.Orders = resolved
	next.UpdatedAt = s.now()

	if err := s.commit(ctx, &next, "selection superseded by a newer request"); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			s.fail(ctx, span, err, "failed to save selection", "session_id", sessionID)
		}
		return nil, err
	}

	s.metrics.IncrementSelection(string(id.Kind))
	s.logger.InfoContext(ctx, "history candidate selected",
		"session_id", sessionID,
		"candidate_kind", id.Kind,
		"orders", len(resolved),
		"degraded", snap.degraded,
	)

	history := models.NewHistory(candidate, resolved)
	history.Degraded = snap.degraded
	return history, nil
}

// Session returns the stored state of a session.
func (s *Service) Session(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	sess, err := s.store.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	return sess, nil
}

func (s *Service) commit(ctx context.Context, sess *models.Session, superseded string) error {
	applied, err := s.store.Commit(ctx, sess, s.ttl)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}
	if !applied {
		return dErrors.New(dErrors.CodeConflict, superseded)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string, args ...any) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.ErrorContext(ctx, msg, append(args, "error", err)...)
}

func searchOutcome(candidates int, degraded []models.Collection) string {
	switch {
	case len(degraded) > 0:
		return metrics.OutcomeDegraded
	case candidates == 0:
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeOK
	}
}

// hashQuery identifies a search term in logs without recording it.
func hashQuery(term string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(term)))
	return hex.EncodeToString(sum[:6])
}
