package store

import "errors"

var (
	// ErrBackendUnavailable marks transport or auth failures against the
	// remote store. Fallback recovers from it by demoting to the local file.
	ErrBackendUnavailable = errors.New("remote store unavailable")

	// ErrNotTranslatable marks a query shape the remote table API cannot
	// serve (joins, aggregation, multi-predicate filters). It is surfaced to
	// the caller rather than silently returning wrong rows.
	ErrNotTranslatable = errors.New("query not translatable for remote store")
)
