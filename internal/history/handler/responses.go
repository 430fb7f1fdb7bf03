package handler

import (
	"time"

	"github.com/google/uuid"

	"backoffice/internal/history/models"
)

// CandidateResponse is one deduplicated person.
type CandidateResponse struct {
	Kind          string   `json:"kind"`
	ID            string   `json:"id"`
	SourceOrderID string   `json:"source_order_id,omitempty"`
	Name          string   `json:"name"`
	Phones        []string `json:"phones"`
	Email         string   `json:"email,omitempty"`
	Address       string   `json:"address,omitempty"`
	City          string   `json:"city,omitempty"`
	Governorate   string   `json:"governorate,omitempty"`
}

// OrderResponse is one order, which doubles as its invoice.
type OrderResponse struct {
	ID     string     `json:"id"`
	Number string     `json:"number"`
	Date   *time.Time `json:"date,omitempty"`
	Total  float64    `json:"total"`
	Status string     `json:"status,omitempty"`
	Buyer  string     `json:"buyer"`
	Phone  string     `json:"phone,omitempty"`
	Email  string     `json:"email,omitempty"`
}

// SearchResponse is the HTTP response for GET /admin/history/search.
type SearchResponse struct {
	SessionID  uuid.UUID           `json:"session_id"`
	Query      string              `json:"query"`
	Candidates []CandidateResponse `json:"candidates"`
	Selected   *CandidateResponse  `json:"selected,omitempty"`
	Orders     []OrderResponse     `json:"orders"`
	Invoices   []OrderResponse     `json:"invoices"`
	Degraded   []string            `json:"degraded"`
}

// HistoryResponse is the HTTP response for a selection.
type HistoryResponse struct {
	Candidate CandidateResponse `json:"candidate"`
	Orders    []OrderResponse   `json:"orders"`
	Invoices  []OrderResponse   `json:"invoices"`
	Degraded  []string          `json:"degraded"`
}

// SessionResponse is the HTTP response for GET /admin/history/sessions/{session_id}.
type SessionResponse struct {
	SessionID  uuid.UUID           `json:"session_id"`
	Query      string              `json:"query"`
	Candidates []CandidateResponse `json:"candidates"`
	Selected   *models.Identity    `json:"selected,omitempty"`
	Orders     []OrderResponse     `json:"orders"`
	Invoices   []OrderResponse     `json:"invoices"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func FromSearchResult(r *models.SearchResult) *SearchResponse {
	resp := &SearchResponse{
		SessionID:  r.SessionID,
		Query:      r.Query,
		Candidates: fromCandidates(r.Candidates),
		Orders:     []OrderResponse{},
		Invoices:   []OrderResponse{},
		Degraded:   fromCollections(r.Degraded),
	}
	if r.History != nil {
		selected := fromCandidate(r.History.Candidate)
		resp.Selected = &selected
		resp.Orders = fromOrders(r.History.Orders)
		resp.Invoices = fromOrders(r.History.Invoices)
	}
	return resp
}

func FromHistory(h *models.History) *HistoryResponse {
	return &HistoryResponse{
		Candidate: fromCandidate(h.Candidate),
		Orders:    fromOrders(h.Orders),
		Invoices:  fromOrders(h.Invoices),
		Degraded:  fromCollections(h.Degraded),
	}
}

func FromSession(s *models.Session) *SessionResponse {
	orders := fromOrders(s.Orders)
	return &SessionResponse{
		SessionID:  s.ID,
		Query:      s.Query,
		Candidates: fromCandidates(s.Candidates),
		Selected:   s.Selected,
		Orders:     orders,
		Invoices:   orders,
		UpdatedAt:  s.UpdatedAt,
	}
}

func fromCandidate(c models.Candidate) CandidateResponse {
	phones := c.Phones
	if phones == nil {
		phones = []string{}
	}
	return CandidateResponse{
		Kind:          string(c.Identity.Kind),
		ID:            c.Identity.ID,
		SourceOrderID: c.Identity.SourceOrderID(),
		Name:          c.Name,
		Phones:        phones,
		Email:         c.Email,
		Address:       c.Address,
		City:          c.City,
		Governorate:   c.Governorate,
	}
}

func fromCandidates(cs []models.Candidate) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, fromCandidate(c))
	}
	return out
}

func fromOrders(os []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(os))
	for _, o := range os {
		out = append(out, OrderResponse{
			ID:     o.ID,
			Number: o.Number,
			Date:   o.Date,
			Total:  o.Total,
			Status: o.Status,
			Buyer:  o.FullName(),
			Phone:  o.Phone,
			Email:  o.Email,
		})
	}
	return out
}

func fromCollections(cs []models.Collection) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, string(c))
	}
	return out
}
