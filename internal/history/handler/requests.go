package handler

import (
	"strings"

	"backoffice/internal/history/models"
	dErrors "backoffice/pkg/domain-errors"
)

// SelectRequest is the body of POST /admin/history/sessions/{session_id}/select.
type SelectRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// Validate normalizes the request and checks the candidate reference.
func (r *SelectRequest) Validate() error {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.ID = strings.TrimSpace(r.ID)
	if _, err := models.ParseKind(r.Kind); err != nil {
		return dErrors.New(dErrors.CodeValidation, "kind must be registered or guest")
	}
	if r.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "id is required")
	}
	return nil
}

// Identity returns the validated candidate reference.
func (r *SelectRequest) Identity() models.Identity {
	return models.Identity{Kind: models.Kind(r.Kind), ID: r.ID}
}
