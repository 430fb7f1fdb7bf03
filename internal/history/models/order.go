package models

import (
	"time"

	pstrings "backoffice/pkg/platform/strings"
)

// Order is a transaction record. It carries its own copy of the buyer's
// identity fields, which is the only trace of a guest buyer.
// In this domain an order and its invoice are the same record.
type Order struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	Date        *time.Time `json:"date,omitempty"`
	Total       float64    `json:"total"`
	Status      string     `json:"status"`
	Nom         string     `json:"nom"`
	Prenom      string     `json:"prenom"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	Governorate string     `json:"governorate,omitempty"`
}

// FullName returns "nom prenom".
func (o Order) FullName() string {
	return pstrings.JoinNonEmpty(o.Nom, o.Prenom)
}

// ReversedName returns "prenom nom".
func (o Order) ReversedName() string {
	return pstrings.JoinNonEmpty(o.Prenom, o.Nom)
}
