package validators

import "errors"

var (
	// ErrUnsupportedType is returned when a value of an unsupported type
	// is passed to a validator that cannot handle it.
	ErrUnsupportedType = errors.New("unsupported type for validation")

	// ErrEmptyBatch is returned when an operation requires a non-empty
	// batch of records but an empty slice is provided.
	ErrEmptyBatch = errors.New("record batch cannot be empty")

	// ErrInvalidRecordID is returned when a record arrives without its
	// client-generated id, which the store needs for idempotency.
	ErrInvalidRecordID = errors.New("invalid record id")

	// ErrInvalidHostID is returned when a record carries a zero host id.
	ErrInvalidHostID = errors.New("invalid host id")

	// ErrInvalidTag is returned when a record's tag is empty, too long, or
	// contains non-printable-ASCII characters.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrInvalidVersion is returned when a record's payload schema version
	// is missing or exceeds the permitted length.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrEmptyPayload is returned when a record arrives without a sealed
	// payload: the store never accepts plaintext, but it also never
	// accepts nothing.
	ErrEmptyPayload = errors.New("record payload cannot be empty")

	// ErrNonContiguousBatch is returned when a batch's records for one
	// (host, tag) stream do not form a dense ascending idx run.
	ErrNonContiguousBatch = errors.New("record batch is not contiguous per stream")
)
