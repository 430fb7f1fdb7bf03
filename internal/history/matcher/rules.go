// Package matcher reconciles free-text searches against registered clients
// and the buyer identities embedded in orders.
//
// Everything here is pure domain logic: no I/O, no side effects, inputs are
// never mutated, and the same inputs always produce the same output.
package matcher

import (
	"strings"

	"backoffice/internal/history/models"
	pstrings "backoffice/pkg/platform/strings"
)

// MinSuffixDigits is the shortest stored number a longer query may end with.
// It lets "+216 20 123 456" find "20123456" without letting "5" find everyone.
const MinSuffixDigits = 6

// Query is a search term normalized once per call.
type Query struct {
	Raw    string
	Lower  string
	Digits string
}

// Normalize trims the term and derives its case-folded and digits-only forms.
func Normalize(term string) Query {
	raw := strings.TrimSpace(term)
	return Query{
		Raw:    raw,
		Lower:  strings.ToLower(raw),
		Digits: pstrings.DigitsOnly(raw),
	}
}

// IsEmpty reports a blank search term, which must never match anything.
func (q Query) IsEmpty() bool {
	return q.Raw == ""
}

// Fields is the identity projection the rules run against.
type Fields struct {
	Names  []string
	Phones []string
	Emails []string
}

// Rule is one named matching predicate.
type Rule struct {
	Name  string
	Match func(q Query, f Fields) bool
}

// Rule names, also used as metric labels.
const (
	RulePhoneExact    = "phone_exact"
	RuleEmailExact    = "email_exact"
	RuleNameContains  = "name_contains"
	RulePhoneContains = "phone_contains"
	RuleEmailContains = "email_contains"
	RulePhoneDigits   = "phone_digits"
)

// Rules is evaluated in order; the first match wins.
var Rules = []Rule{
	{Name: RulePhoneExact, Match: func(q Query, f Fields) bool {
		return anyOf(f.Phones, func(p string) bool { return strings.TrimSpace(p) == q.Raw })
	}},
	{Name: RuleEmailExact, Match: func(q Query, f Fields) bool {
		return anyOf(f.Emails, func(e string) bool { return pstrings.Fold(e) == q.Lower })
	}},
	{Name: RuleNameContains, Match: func(q Query, f Fields) bool {
		return anyOf(f.Names, func(n string) bool { return strings.Contains(pstrings.Fold(n), q.Lower) })
	}},
	{Name: RulePhoneContains, Match: func(q Query, f Fields) bool {
		return anyOf(f.Phones, func(p string) bool { return strings.Contains(p, q.Raw) })
	}},
	{Name: RuleEmailContains, Match: func(q Query, f Fields) bool {
		return anyOf(f.Emails, func(e string) bool { return strings.Contains(pstrings.Fold(e), q.Lower) })
	}},
	{Name: RulePhoneDigits, Match: func(q Query, f Fields) bool {
		if q.Digits == "" {
			return false
		}
		return anyOf(f.Phones, func(p string) bool { return digitsMatch(q.Digits, pstrings.DigitsOnly(p)) })
	}},
}

// Match runs the rule table and returns the first rule that matched.
func Match(q Query, f Fields) (string, bool) {
	if q.IsEmpty() {
		return "", false
	}
	for _, r := range Rules {
		if r.Match(q, f) {
			return r.Name, true
		}
	}
	return "", false
}

// ClientFields projects a registered client.
func ClientFields(c models.Client) Fields {
	return Fields{
		Names:  []string{c.Name, c.Nom, c.Prenom, pstrings.JoinNonEmpty(c.Nom, c.Prenom), pstrings.JoinNonEmpty(c.Prenom, c.Nom)},
		Phones: c.Phones,
		Emails: []string{c.Email},
	}
}

// OrderFields projects the buyer identity embedded in an order.
func OrderFields(o models.Order) Fields {
	return Fields{
		Names:  []string{o.Nom, o.Prenom, o.FullName(), o.ReversedName()},
		Phones: []string{o.Phone},
		Emails: []string{o.Email},
	}
}

func digitsMatch(query, stored string) bool {
	if stored == "" {
		return false
	}
	if stored == query || strings.Contains(stored, query) || strings.HasSuffix(stored, query) {
		return true
	}
	return len(stored) >= MinSuffixDigits && strings.HasSuffix(query, stored)
}

// anyOf ignores blank values so an empty stored field never matches.
func anyOf(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if pred(v) {
			return true
		}
	}
	return false
}
