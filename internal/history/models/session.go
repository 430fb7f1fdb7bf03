package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the transient state of one operator's history screen.
// Token is the generation that produced it; a commit with an older token is discarded.
type Session struct {
	ID         uuid.UUID   `json:"id"`
	Token      uint64      `json:"token"`
	Query      string      `json:"query"`
	Candidates []Candidate `json:"candidates"`
	Selected   *Identity   `json:"selected,omitempty"`
	Orders     []Order     `json:"orders"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Candidate finds a candidate of this session by identity.
func (s *Session) Candidate(id Identity) (Candidate, bool) {
	for _, c := range s.Candidates {
		if c.Identity == id {
			return c, true
		}
	}
	return Candidate{}, false
}

// History is the resolved record set for one candidate. Orders and Invoices
// are backed by the same records. Degraded lists collections that could not
// be fetched while resolving it.
type History struct {
	Candidate Candidate    `json:"candidate"`
	Orders    []Order      `json:"orders"`
	Invoices  []Order      `json:"invoices"`
	Degraded  []Collection `json:"degraded,omitempty"`
}

// NewHistory builds a History where both views share the matched orders.
func NewHistory(c Candidate, orders []Order) *History {
	if orders == nil {
		orders = []Order{}
	}
	return &History{Candidate: c, Orders: orders, Invoices: orders}
}

// Collection names a backend collection.
type Collection string

const (
	CollectionClients Collection = "clients"
	CollectionOrders  Collection = "orders"
)

// SearchResult is what one search produced.
type SearchResult struct {
	SessionID  uuid.UUID    `json:"session_id"`
	Query      string       `json:"query"`
	Candidates []Candidate  `json:"candidates"`
	History    *History     `json:"history,omitempty"`
	Degraded   []Collection `json:"degraded,omitempty"`
}
