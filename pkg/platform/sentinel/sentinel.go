package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and adapters return these
// (optionally wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: the entity does not exist (or has expired) in the store
//   - ErrUnavailable: a backing service could not be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
