package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These describe the state of stored records, not bad input:
// - ErrNotFound: record does not exist in store
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrUnavailable: a backing service (e.g. the Redis scan lock) is unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
