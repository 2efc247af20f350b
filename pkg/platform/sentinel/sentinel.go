package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores (memory, postgres, redis)
// return these, optionally wrapped, so services can translate them into coded
// domain errors without depending on a concrete store.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: record already exists or a uniqueness rule was violated
// - ErrInvalidState: record is in the wrong state for the requested operation
// - ErrUnavailable: backing service temporarily unreachable
//
// For validation failures (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
