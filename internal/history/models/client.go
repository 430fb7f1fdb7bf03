package models

import (
	pstrings "backoffice/pkg/platform/strings"
)

// Client is a registered client as returned by the backend client list.
type Client struct {
	ID          string
	Name        string
	Nom         string
	Prenom      string
	Phones      []string
	Email       string
	Address     string
	City        string
	Governorate string
	PostalCode  string
}

// FullName is the display name: Name when set, otherwise "nom prenom".
func (c Client) FullName() string {
	if n := pstrings.JoinNonEmpty(c.Name); n != "" {
		return n
	}
	return pstrings.JoinNonEmpty(c.Nom, c.Prenom)
}
