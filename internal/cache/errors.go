package cache

import "errors"

// Common cache errors.
//
// Cache failures are designed to never abort the caller's primary workflow:
// a miss (even one caused by a corrupt entry) is always a valid outcome.
// Only malformed input surfaces as an error to the immediate caller.
var (
	// ErrKeyDerivation indicates parameters that cannot be canonically
	// serialized into a cache key. Fatal only to the single call.
	ErrKeyDerivation = errors.New("cache key derivation failed")

	// ErrSerialization indicates a payload that cannot be encoded for storage.
	ErrSerialization = errors.New("cache payload serialization failed")

	// ErrStorageIO indicates an underlying filesystem write or delete failure.
	ErrStorageIO = errors.New("cache storage I/O failed")

	// ErrUnknownType indicates a cache type outside the known set.
	ErrUnknownType = errors.New("unknown cache type")

	// ErrInvalidKey indicates an empty logical key.
	ErrInvalidKey = errors.New("cache key cannot be empty")

	// ErrClosed indicates an operation on a closed cache.
	ErrClosed = errors.New("cache is closed")

	// ErrNoFetcher is returned by GetOrFetch when no fetch function is provided.
	ErrNoFetcher = errors.New("cache: no fetch function provided")
)
