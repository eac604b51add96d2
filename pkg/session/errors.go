package session

import "errors"

var (
	// ErrNotFound means the session is absent or expired.
	ErrNotFound = errors.New("session.not_found")

	// ErrStoreUnavailable means the backend could not be reached. It must
	// never be treated as a missing session.
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	ErrInvalidSession  = errors.New("session.invalid")
	ErrUnknownBackend  = errors.New("session.unknown_backend")
	ErrTokenGeneration = errors.New("session.token_generation_failed")
	ErrMissingDepends  = errors.New("session.missing_dependency")
)

func unavailable(err error) error {
	return errors.Join(ErrStoreUnavailable, err)
}
