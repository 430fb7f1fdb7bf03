package backend

import (
	"errors"
	"fmt"

	"backoffice/internal/history/models"
)

// Category is the normalized failure taxonomy for backend fetches.
type Category string

const (
	// CategoryTimeout indicates the backend took too long to respond
	CategoryTimeout Category = "timeout"

	// CategoryOutage indicates the backend is unreachable or failing (5xx, 429)
	CategoryOutage Category = "outage"

	// CategoryBadData indicates the payload could not be decoded
	CategoryBadData Category = "bad_data"

	// CategoryInternal covers everything else, including rejected requests
	CategoryInternal Category = "internal"
)

// FetchError wraps a failed collection fetch with its category.
type FetchError struct {
	Collection models.Collection
	Category   Category
	Status     int // HTTP status, 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s [%s]: status %d: %v", e.Collection, e.Category, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s [%s]: %v", e.Collection, e.Category, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CategoryOf extracts the category from an error, CategoryInternal if none.
func CategoryOf(err error) Category {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Category
	}
	return CategoryInternal
}

// IsTransient reports failures an operator may simply retry later.
func IsTransient(err error) bool {
	c := CategoryOf(err)
	return c == CategoryTimeout || c == CategoryOutage
}
