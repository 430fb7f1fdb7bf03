package models

import (
	"fmt"

	pstrings "backoffice/pkg/platform/strings"
)

// Kind tags where a candidate identity comes from.
type Kind string

const (
	// KindRegistered is a client with a persistent record in the client store.
	KindRegistered Kind = "registered"
	// KindGuest is a buyer known only through one of their orders.
	KindGuest Kind = "guest"
)

// ParseKind validates a wire value.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRegistered, KindGuest:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown candidate kind %q", s)
	}
}

// Identity references a candidate. For KindRegistered, ID is the client id;
// for KindGuest, ID is the id of the order the guest was synthesized from.
type Identity struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func (i Identity) IsGuest() bool { return i.Kind == KindGuest }

// SourceOrderID returns the originating order for guests, "" otherwise.
func (i Identity) SourceOrderID() string {
	if i.Kind == KindGuest {
		return i.ID
	}
	return ""
}

// Candidate is a deduplicated person surfaced by a search.
type Candidate struct {
	Identity    Identity `json:"identity"`
	Name        string   `json:"name"`
	Nom         string   `json:"nom,omitempty"`
	Prenom      string   `json:"prenom,omitempty"`
	Phones      []string `json:"phones"`
	Email       string   `json:"email,omitempty"`
	Address     string   `json:"address,omitempty"`
	City        string   `json:"city,omitempty"`
	Governorate string   `json:"governorate,omitempty"`
}

// HasIdentityFields reports whether any of name, email or phone is set.
// Candidates without them are resolved from the raw query instead.
func (c Candidate) HasIdentityFields() bool {
	return pstrings.JoinNonEmpty(c.Name) != "" ||
		pstrings.JoinNonEmpty(c.Email) != "" ||
		len(pstrings.DedupeAndTrim(c.Phones)) > 0
}

// RegisteredCandidate projects a registered client.
func RegisteredCandidate(c Client) Candidate {
	return Candidate{
		Identity:    Identity{Kind: KindRegistered, ID: c.ID},
		Name:        c.FullName(),
		Nom:         c.Nom,
		Prenom:      c.Prenom,
		Phones:      append([]string(nil), c.Phones...),
		Email:       c.Email,
		Address:     c.Address,
		City:        c.City,
		Governorate: c.Governorate,
	}
}

// GuestCandidate synthesizes a guest from exactly one order. Identity fields
// are copied verbatim; the result is never written back to the client store.
func GuestCandidate(o Order) Candidate {
	var phones []string
	if o.Phone != "" {
		phones = []string{o.Phone}
	}
	return Candidate{
		Identity:    Identity{Kind: KindGuest, ID: o.ID},
		Name:        o.FullName(),
		Nom:         o.Nom,
		Prenom:      o.Prenom,
		Phones:      phones,
		Email:       o.Email,
		Address:     o.Address,
		City:        o.City,
		Governorate: o.Governorate,
	}
}
