package dcb

import (
	"errors"
)

// The closed error taxonomy surfaced by the client. Every failure reported
// by a client operation wraps exactly one of these sentinels, so callers
// can classify errors with errors.Is without ever seeing transport shapes.
var (
	// ErrIntegrityConflict signals that an append condition matched an event
	// appended after the boundary position. Deterministic: re-read and redo
	// the business decision instead of retrying the same append.
	ErrIntegrityConflict = errors.New("append condition matched events after the boundary position")

	// ErrTransportFailed signals a connection, timeout, or protocol-level
	// failure talking to the store. Possibly transient; the client never
	// retries on its own.
	ErrTransportFailed = errors.New("communication with the event store failed")

	// ErrCorruptedData signals a structurally invalid event envelope coming
	// back from the store or the wire. Not retryable.
	ErrCorruptedData = errors.New("event store payload is structurally invalid")

	// ErrIOFailure signals a local input/output failure independent of the
	// remote store, e.g. an unreadable TLS certificate file.
	ErrIOFailure = errors.New("local input/output operation failed")

	// ErrInvalidInput signals malformed client-supplied input, caught before
	// any network call. Always caller-fixable.
	ErrInvalidInput = errors.New("client-supplied input is invalid")
)

// Specific causes joined onto ErrInvalidInput.
var (
	ErrInvalidUUID        = errors.New("uuid is not a valid UUID string")
	ErrEmptyEventBatch    = errors.New("empty event batch supplied")
	ErrSubscribeBackwards = errors.New("subscribe cannot be combined with backwards")
	ErrEmptyURL           = errors.New("empty url supplied")
	ErrZeroBatchSize      = errors.New("batch size must be greater than zero")
)
