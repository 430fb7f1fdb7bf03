package matcher

import (
	"strings"

	"backoffice/internal/history/models"
	pstrings "backoffice/pkg/platform/strings"
)

// Dedupe keeps the first occurrence of each group of duplicates.
// An entry is dropped when any earlier entry (kept or not) duplicates it, so
// a chain of guests linked by shared contacts collapses onto its first member.
func Dedupe(candidates []models.Candidate) []models.Candidate {
	result := make([]models.Candidate, 0, len(candidates))
	for i, c := range candidates {
		dup := false
		for j := 0; j < i; j++ {
			if SamePerson(candidates[j], c) {
				dup = true
				break
			}
		}
		if !dup {
			result = append(result, c)
		}
	}
	return result
}

// SamePerson decides whether two candidates describe one person.
// Two registered clients are the same only by identifier; a registered
// client's identity is authoritative even when a household shares a line.
// When either side is a guest, a shared phone or email is enough.
func SamePerson(a, b models.Candidate) bool {
	if a.Identity.Kind == models.KindRegistered && b.Identity.Kind == models.KindRegistered {
		return a.Identity.ID == b.Identity.ID
	}
	return sharePhone(a.Phones, b.Phones) || sameEmail(a.Email, b.Email)
}

func sharePhone(a, b []string) bool {
	for _, pa := range pstrings.DedupeAndTrim(a) {
		for _, pb := range pstrings.DedupeAndTrim(b) {
			if pa == pb {
				return true
			}
		}
	}
	return false
}

func sameEmail(a, b string) bool {
	fa := pstrings.Fold(a)
	return fa != "" && strings.EqualFold(fa, pstrings.Fold(b))
}
