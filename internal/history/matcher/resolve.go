package matcher

import (
	"strings"

	"backoffice/internal/history/models"
	pstrings "backoffice/pkg/platform/strings"
)

// ResolveOrders returns the orders belonging to a selected candidate, in
// source order. term is the search that produced the candidate; it is only
// used when the candidate carries no name, email or phone.
//
// Guests resolve strictly (exact email or exact phone) because a pinned-down
// person must not pull in look-alikes. Registered clients may also resolve by
// full name against the order's "nom prenom" (either order).
func ResolveOrders(c models.Candidate, orders []models.Order, term string) []models.Order {
	if !c.HasIdentityFields() {
		return OrdersMatching(Normalize(term), orders)
	}

	matched := make([]models.Order, 0)
	for _, o := range orders {
		if ownsOrder(c, o) {
			matched = append(matched, o)
		}
	}
	return matched
}

func ownsOrder(c models.Candidate, o models.Order) bool {
	if sameEmail(c.Email, o.Email) || exactPhone(c.Phones, o.Phone) {
		return true
	}
	if c.Identity.IsGuest() {
		return false
	}
	name := pstrings.Fold(c.Name)
	if name == "" {
		return false
	}
	return name == pstrings.Fold(o.FullName()) || name == pstrings.Fold(o.ReversedName())
}

func exactPhone(phones []string, phone string) bool {
	p := strings.TrimSpace(phone)
	if p == "" {
		return false
	}
	for _, cp := range phones {
		if strings.TrimSpace(cp) == p {
			return true
		}
	}
	return false
}
