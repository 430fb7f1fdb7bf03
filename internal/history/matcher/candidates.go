package matcher

import (
	"backoffice/internal/history/models"
)

// Outcome is the result of one reconciliation pass.
// RuleHits counts matched records per rule before deduplication.
type Outcome struct {
	Candidates []models.Candidate
	RuleHits   map[string]int
}

// FindCandidates resolves a search term into deduplicated candidate identities.
func FindCandidates(term string, clients []models.Client, orders []models.Order) []models.Candidate {
	return Reconcile(term, clients, orders).Candidates
}

// Reconcile matches clients and orders against term, synthesizes a guest for
// every matching order, and deduplicates the union. Registered matches come
// first so they are kept over guests describing the same person.
func Reconcile(term string, clients []models.Client, orders []models.Order) Outcome {
	out := Outcome{Candidates: []models.Candidate{}, RuleHits: map[string]int{}}
	q := Normalize(term)
	if q.IsEmpty() {
		return out
	}

	union := make([]models.Candidate, 0)
	for _, c := range clients {
		if rule, ok := Match(q, ClientFields(c)); ok {
			out.RuleHits[rule]++
			union = append(union, models.RegisteredCandidate(c))
		}
	}
	for _, o := range orders {
		if rule, ok := Match(q, OrderFields(o)); ok {
			out.RuleHits[rule]++
			union = append(union, models.GuestCandidate(o))
		}
	}

	out.Candidates = Dedupe(union)
	return out
}

// OrdersMatching returns the orders whose embedded identity matches q,
// in source order.
func OrdersMatching(q Query, orders []models.Order) []models.Order {
	matched := make([]models.Order, 0)
	if q.IsEmpty() {
		return matched
	}
	for _, o := range orders {
		if _, ok := Match(q, OrderFields(o)); ok {
			matched = append(matched, o)
		}
	}
	return matched
}
