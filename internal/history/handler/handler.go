package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"backoffice/internal/history/models"
	dErrors "backoffice/pkg/domain-errors"
	"backoffice/pkg/platform/httputil"
	"backoffice/pkg/requestcontext"
)

// Service defines the interface for history operations.
type Service interface {
	Search(ctx context.Context, sessionID uuid.UUID, query string) (*models.SearchResult, error)
	Select(ctx context.Context, sessionID uuid.UUID, id models.Identity) (*models.History, error)
	Session(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
}

// Handler wires history endpoints to the history service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a history handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts history endpoints on the router. Callers are expected to
// gate the router with the admin token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/history/search", h.HandleSearch)
	r.Post("/admin/history/sessions/{session_id}/select", h.HandleSelect)
	r.Get("/admin/history/sessions/{session_id}", h.HandleGetSession)
}

// HandleSearch handles GET /admin/history/search?q=...&session_id=...
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "query parameter q is required"))
		return
	}

	sessionID := uuid.Nil
	if raw := strings.TrimSpace(r.URL.Query().Get("session_id")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session_id"))
			return
		}
		sessionID = parsed
	}

	result, err := h.service.Search(ctx, sessionID, query)
	if err != nil {
		h.logFailure(ctx, "history search failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "history search served",
		"request_id", requestID,
		"session_id", result.SessionID,
		"candidates", len(result.Candidates),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSearchResult(result))
}

// HandleSelect handles POST /admin/history/sessions/{session_id}/select
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SelectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	history, err := h.service.Select(ctx, sessionID, req.Identity())
	if err != nil {
		h.logFailure(ctx, "history selection failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "history selection served",
		"request_id", requestID,
		"session_id", sessionID,
		"orders", len(history.Orders),
	)
	httputil.WriteJSON(w, http.StatusOK, FromHistory(history))
}

// HandleGetSession handles GET /admin/history/sessions/{session_id}
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.service.Session(ctx, sessionID)
	if err != nil {
		h.logFailure(ctx, "history session lookup failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(sess))
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session_id"))
		return uuid.Nil, false
	}
	return id, true
}

// logFailure logs expected client-side outcomes at warn and the rest at error.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound, dErrors.CodeConflict, dErrors.CodeValidation, dErrors.CodeBadRequest:
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
	default:
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
	}
}
