package core

import "errors"

var (
	// ErrKeyNotFound is returned by KV backends when a key has no value.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNotFound is returned when a photo or drawing id does not exist.
	ErrNotFound = errors.New("not found")
)

// IsNotFound reports whether err is a miss rather than a store failure.
// Everything else coming out of a KV backend is treated as "store
// unavailable" and callers substitute their per-call-site default.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, ErrNotFound)
}
