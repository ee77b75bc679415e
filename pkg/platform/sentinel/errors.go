package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrRevoked: grant already carries a revocation timestamp
// - ErrExpired: grant expiry has passed relative to the injected clock
// - ErrConflict: unique constraint violated (duplicate token digest)
// - ErrUnavailable: the durable store could not be reached
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrRevoked     = errors.New("revoked")
	ErrExpired     = errors.New("expired")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
