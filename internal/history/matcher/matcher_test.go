package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/history/models"
)

func registered(id, name, email string, phones ...string) models.Client {
	return models.Client{ID: id, Name: name, Email: email, Phones: phones}
}

func order(id, nom, prenom, phone, email string) models.Order {
	return models.Order{ID: id, Number: "CMD-" + id, Nom: nom, Prenom: prenom, Phone: phone, Email: email}
}

func identities(cs []models.Candidate) []models.Identity {
	out := make([]models.Identity, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Identity)
	}
	return out
}

func orderIDs(os []models.Order) []string {
	out := make([]string, 0, len(os))
	for _, o := range os {
		out = append(out, o.ID)
	}
	return out
}

func TestNormalize(t *testing.T) {
	q := Normalize("  +216 20-123-456 ")
	assert.Equal(t, "+216 20-123-456", q.Raw)
	assert.Equal(t, "21620123456", q.Digits)
	assert.Equal(t, "jean@d.tn", Normalize("JEAN@D.TN").Lower)
	assert.True(t, Normalize("   ").IsEmpty())
}

func TestMatchRuleTable(t *testing.T) {
	fields := Fields{
		Names:  []string{"Jean Dupont"},
		Phones: []string{"20123456"},
		Emails: []string{"Jean.Dupont@Mail.tn"},
	}

	tests := []struct {
		name  string
		query string
		rule  string
		ok    bool
	}{
		{"exact phone", "20123456", RulePhoneExact, true},
		{"exact email ignores case", "jean.dupont@mail.tn", RuleEmailExact, true},
		{"name substring", "dupont", RuleNameContains, true},
		{"phone substring", "0123", RulePhoneContains, true},
		{"email substring", "@mail", RuleEmailContains, true},
		{"formatted phone", "20 123 456", RulePhoneDigits, true},
		{"international prefix", "+216 20 123 456", RulePhoneDigits, true},
		{"unrelated", "martin", "", false},
		{"blank", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := Match(Normalize(tt.query), fields)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.rule, rule)
		})
	}
}

func TestMatchIgnoresBlankStoredFields(t *testing.T) {
	_, ok := Match(Normalize("@"), Fields{Emails: []string{""}, Phones: []string{" "}})
	assert.False(t, ok)
}

func TestShortStoredNumberIsNotASuffixMatch(t *testing.T) {
	_, ok := Match(Normalize("21620123456"), Fields{Phones: []string{"456"}})
	assert.False(t, ok)
}

func TestFindCandidatesByPhone(t *testing.T) {
	for _, p := range []string{"20123456", "+21698765432", "71 234 567"} {
		c := registered("c1", "Client", "", p)
		got := FindCandidates(p, []models.Client{c}, nil)
		assert.Contains(t, identities(got), models.Identity{Kind: models.KindRegistered, ID: "c1"}, p)
	}
}

func TestFindCandidatesDigitNormalized(t *testing.T) {
	t.Run("prefixed query finds local number", func(t *testing.T) {
		got := FindCandidates("216-20-123-456", []models.Client{registered("c1", "", "", "20123456")}, nil)
		require.Len(t, got, 1)
		assert.Equal(t, "c1", got[0].Identity.ID)
	})
	t.Run("local query finds prefixed number", func(t *testing.T) {
		got := FindCandidates("20123456", []models.Client{registered("c1", "", "", "216-20-123-456")}, nil)
		require.Len(t, got, 1)
		assert.Equal(t, "c1", got[0].Identity.ID)
	})
}

func TestFindCandidatesEmailCaseInsensitive(t *testing.T) {
	got := FindCandidates("A@B.COM", []models.Client{registered("c1", "", "a@b.com")}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].Identity.ID)
}

func TestFindCandidatesPrefersRegistered(t *testing.T) {
	clients := []models.Client{registered("c1", "Jean Dupont", "j@d.tn")}
	orders := []models.Order{order("o1", "Dupont", "Jean", "", "J@D.TN")}

	got := FindCandidates("j@d.tn", clients, orders)
	require.Len(t, got, 1)
	assert.Equal(t, models.Identity{Kind: models.KindRegistered, ID: "c1"}, got[0].Identity)
}

func TestFindCandidatesGuestsFromOrders(t *testing.T) {
	orders := []models.Order{
		order("o1", "Ben Ali", "Sami", "55111222", "sami@x.tn"),
		order("o2", "Ben Ali", "Sami", "55111222", ""),
		order("o3", "Trabelsi", "Ines", "22333444", "ines@x.tn"),
	}

	got := FindCandidates("ben ali", nil, orders)
	assert.Equal(t, []models.Identity{{Kind: models.KindGuest, ID: "o1"}}, identities(got))
	assert.Equal(t, "Ben Ali Sami", got[0].Name)
}

func TestFindCandidatesFullNameEitherOrder(t *testing.T) {
	orders := []models.Order{order("o1", "Dupont", "Jean", "20123456", "")}
	assert.Len(t, FindCandidates("dupont jean", nil, orders), 1)
	assert.Len(t, FindCandidates("Jean Dupont", nil, orders), 1)
}

func TestDedupeAsymmetry(t *testing.T) {
	t.Run("registered clients sharing a line stay distinct", func(t *testing.T) {
		clients := []models.Client{
			registered("c1", "Amel Gharbi", "", "71000000"),
			registered("c2", "Karim Gharbi", "", "71000000"),
		}
		got := FindCandidates("71000000", clients, nil)
		assert.Len(t, got, 2)
	})

	t.Run("guests sharing a line merge", func(t *testing.T) {
		orders := []models.Order{
			order("o1", "Gharbi", "Amel", "71000000", "amel@x.tn"),
			order("o2", "Gharbi", "Karim", "71000000", "karim@x.tn"),
		}
		got := FindCandidates("71000000", nil, orders)
		assert.Equal(t, []models.Identity{{Kind: models.KindGuest, ID: "o1"}}, identities(got))
	})

	t.Run("chains collapse onto the first member", func(t *testing.T) {
		candidates := []models.Candidate{
			{Identity: models.Identity{Kind: models.KindRegistered, ID: "c1"}, Phones: []string{"111111"}},
			{Identity: models.Identity{Kind: models.KindGuest, ID: "o1"}, Phones: []string{"111111"}, Email: "x@y.tn"},
			{Identity: models.Identity{Kind: models.KindGuest, ID: "o2"}, Phones: []string{"222222"}, Email: "X@Y.tn"},
		}
		assert.Equal(t, []models.Identity{{Kind: models.KindRegistered, ID: "c1"}}, identities(Dedupe(candidates)))
	})

	t.Run("same registered id collapses", func(t *testing.T) {
		candidates := []models.Candidate{
			{Identity: models.Identity{Kind: models.KindRegistered, ID: "c1"}},
			{Identity: models.Identity{Kind: models.KindRegistered, ID: "c1"}},
		}
		assert.Len(t, Dedupe(candidates), 1)
	})

	t.Run("guests without contact fields are never merged", func(t *testing.T) {
		orders := []models.Order{order("o1", "Saidi", "Ali", "", ""), order("o2", "Saidi", "Ali", "", "")}
		assert.Len(t, FindCandidates("saidi", nil, orders), 2)
	})
}

func TestFindCandidatesEmptyQuery(t *testing.T) {
	clients := []models.Client{registered("c1", "Jean", "j@d.tn", "20123456")}
	orders := []models.Order{order("o1", "Dupont", "Jean", "20123456", "j@d.tn")}

	for _, q := range []string{"", "   "} {
		got := FindCandidates(q, clients, orders)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestFindCandidatesIsIdempotent(t *testing.T) {
	clients := []models.Client{
		registered("c1", "Jean Dupont", "j@d.tn", "20123456", "98000111"),
		registered("c2", "Jeanne Martin", "jm@d.tn", "20999888"),
	}
	orders := []models.Order{
		order("o1", "Dupont", "Jean", "20123456", "j@d.tn"),
		order("o2", "Jeannot", "Paul", "50123456", "paul@d.tn"),
	}
	clientsBefore := []models.Client{
		registered("c1", "Jean Dupont", "j@d.tn", "20123456", "98000111"),
		registered("c2", "Jeanne Martin", "jm@d.tn", "20999888"),
	}

	first := FindCandidates("jean", clients, orders)
	second := FindCandidates("jean", clients, orders)
	assert.Equal(t, first, second)
	assert.Equal(t, clientsBefore, clients)
	assert.Equal(t, []models.Identity{
		{Kind: models.KindRegistered, ID: "c1"},
		{Kind: models.KindRegistered, ID: "c2"},
		{Kind: models.KindGuest, ID: "o2"},
	}, identities(first))
}

func TestReconcileCountsRuleHits(t *testing.T) {
	clients := []models.Client{registered("c1", "", "", "20123456")}
	orders := []models.Order{order("o1", "", "", "20123456", "")}

	out := Reconcile("20123456", clients, orders)
	assert.Equal(t, 2, out.RuleHits[RulePhoneExact])
	assert.Len(t, out.Candidates, 1)
}

func TestResolveOrdersGuestIsStrict(t *testing.T) {
	guest := models.GuestCandidate(order("o1", "Dupont", "Jean", "20123456", "j@d.tn"))
	orders := []models.Order{
		order("o1", "Dupont", "Jean", "20123456", "j@d.tn"),
		order("o2", "Dupont", "Jean", "2012345678", ""),
		order("o3", "Autre", "Nom", "", "J@D.TN"),
		order("o4", "Dupont", "Jean", "", ""),
	}

	got := ResolveOrders(guest, orders, "20123456")
	assert.Equal(t, []string{"o1", "o3"}, orderIDs(got))
}

func TestResolveOrdersRegisteredByName(t *testing.T) {
	c := models.RegisteredCandidate(registered("c1", "Jean Dupont", ""))
	orders := []models.Order{
		order("o1", "Dupont", "Jean", "55000000", "other@x.tn"),
		order("o2", " dupont ", "JEAN", "", ""),
		order("o3", "Dupontel", "Jean", "", ""),
	}

	got := ResolveOrders(c, orders, "jean")
	assert.Equal(t, []string{"o1", "o2"}, orderIDs(got))
}

func TestResolveOrdersRegisteredByContact(t *testing.T) {
	c := models.RegisteredCandidate(registered("c1", "J. D.", "j@d.tn", "11111111", "20123456"))
	orders := []models.Order{
		order("o1", "", "", "20123456", ""),
		order("o2", "", "", "", "J@d.tn"),
		order("o3", "", "", "201234", ""),
	}
	assert.Equal(t, []string{"o1", "o2"}, orderIDs(ResolveOrders(c, orders, "")))
}

func TestResolveOrdersFallsBackToQuery(t *testing.T) {
	empty := models.Candidate{Identity: models.Identity{Kind: models.KindRegistered, ID: "c9"}}
	orders := []models.Order{
		order("o1", "Dupont", "Jean", "20123456", ""),
		order("o2", "Martin", "Luc", "55000000", ""),
	}

	assert.Equal(t, []string{"o1"}, orderIDs(ResolveOrders(empty, orders, "dupont")))
	assert.Empty(t, ResolveOrders(empty, orders, ""))
}

func TestResolveOrdersEmptyIsNotAnError(t *testing.T) {
	c := models.RegisteredCandidate(registered("c1", "Nobody", "nobody@x.tn"))
	got := ResolveOrders(c, []models.Order{order("o1", "A", "B", "1", "a@b.tn")}, "nobody")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExampleScenario(t *testing.T) {
	clients := []models.Client{{ID: "c1", Phones: []string{"20123456"}, Email: "j@d.tn", Name: "Jean Dupont"}}
	orders := []models.Order{{ID: "o1", Nom: "Dupont", Prenom: "Jean", Phone: "20123456", Email: "j@d.tn", Number: "CMD-1"}}

	candidates := FindCandidates("20123456", clients, orders)
	require.Len(t, candidates, 1)
	assert.Equal(t, models.Identity{Kind: models.KindRegistered, ID: "c1"}, candidates[0].Identity)

	h := models.NewHistory(candidates[0], ResolveOrders(candidates[0], orders, "20123456"))
	assert.Equal(t, []string{"o1"}, orderIDs(h.Orders))
	assert.Equal(t, []string{"o1"}, orderIDs(h.Invoices))
}
