package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"backoffice/internal/history/models"
	pstrings "backoffice/pkg/platform/strings"
)

var errUnknownShape = errors.New("payload is neither an array nor a data envelope")

// decodeList accepts a bare JSON array or an envelope {"data": [...]}.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}

	raw := body
	if body[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, err
		}
		raw = bytes.TrimSpace(env.Data)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return []T{}, nil
		}
	}
	if raw[0] != '[' {
		return nil, errUnknownShape
	}

	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// flexString accepts strings, numbers and booleans. Anything else decodes as "".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = flexString(t)
	case json.Number:
		*s = flexString(t.String())
	case bool:
		*s = flexString(strconv.FormatBool(t))
	default:
		*s = ""
	}
	return nil
}

// flexFloat accepts numbers and numeric strings ("12,5" included).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(string(s)), ",", "."), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate returns nil for blank or unparseable dates.
func parseDate(values ...flexString) *time.Time {
	for _, v := range values {
		s := strings.TrimSpace(string(v))
		if s == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			var t time.Time
			if n > 1e12 {
				t = time.UnixMilli(n).UTC()
			} else {
				t = time.Unix(n, 0).UTC()
			}
			return &t
		}
	}
	return nil
}

// first returns the first non-blank value, trimmed.
func first(values ...flexString) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

type wireClient struct {
	ID          flexString `json:"id"`
	MongoID     flexString `json:"_id"`
	Name        flexString `json:"name"`
	Nom         flexString `json:"nom"`
	Prenom      flexString `json:"prenom"`
	Phone1      flexString `json:"phone_1"`
	Phone2      flexString `json:"phone_2"`
	Phone       flexString `json:"phone"`
	Telephone   flexString `json:"telephone"`
	Email       flexString `json:"email"`
	Address     flexString `json:"address"`
	Adresse     flexString `json:"adresse"`
	City        flexString `json:"city"`
	Ville       flexString `json:"ville"`
	Governorate flexString `json:"governorate"`
	Gouvernorat flexString `json:"gouvernorat"`
	PostalCode  flexString `json:"postal_code"`
	CodePostal  flexString `json:"code_postal"`
}

func (w wireClient) toModel() models.Client {
	phones := pstrings.DedupeAndTrim([]string{
		string(w.Phone1), string(w.Phone2), string(w.Phone), string(w.Telephone),
	})
	if phones == nil {
		phones = []string{}
	}
	return models.Client{
		ID:          first(w.MongoID, w.ID),
		Name:        first(w.Name),
		Nom:         first(w.Nom),
		Prenom:      first(w.Prenom),
		Phones:      phones,
		Email:       first(w.Email),
		Address:     first(w.Address, w.Adresse),
		City:        first(w.City, w.Ville),
		Governorate: first(w.Governorate, w.Gouvernorat),
		PostalCode:  first(w.PostalCode, w.CodePostal),
	}
}

type wireOrder struct {
	ID          flexString `json:"id"`
	MongoID     flexString `json:"_id"`
	Numero      flexString `json:"numero"`
	Number      flexString `json:"number"`
	Date        flexString `json:"date"`
	CreatedAt   flexString `json:"createdAt"`
	Total       *flexFloat `json:"total"`
	TotalTTC    *flexFloat `json:"totalTTC"`
	Status      flexString `json:"status"`
	Statut      flexString `json:"statut"`
	Nom         flexString `json:"nom"`
	Prenom      flexString `json:"prenom"`
	Phone       flexString `json:"phone"`
	Telephone   flexString `json:"telephone"`
	Email       flexString `json:"email"`
	Address     flexString `json:"address"`
	Adresse     flexString `json:"adresse"`
	City        flexString `json:"city"`
	Ville       flexString `json:"ville"`
	Governorate flexString `json:"governorate"`
	Gouvernorat flexString `json:"gouvernorat"`
}

func (w wireOrder) toModel() models.Order {
	var total float64
	switch {
	case w.Total != nil:
		total = float64(*w.Total)
	case w.TotalTTC != nil:
		total = float64(*w.TotalTTC)
	}
	return models.Order{
		ID:          first(w.MongoID, w.ID),
		Number:      first(w.Numero, w.Number),
		Date:        parseDate(w.Date, w.CreatedAt),
		Total:       total,
		Status:      first(w.Status, w.Statut),
		Nom:         first(w.Nom),
		Prenom:      first(w.Prenom),
		Phone:       first(w.Phone, w.Telephone),
		Email:       first(w.Email),
		Address:     first(w.Address, w.Adresse),
		City:        first(w.City, w.Ville),
		Governorate: first(w.Governorate, w.Gouvernorat),
	}
}
