package ddl

import "errors"

// Sentinel errors.
var (
	// ErrUnrecognizedDialect is returned by every dialect-dependent operation
	// when handed a dialect it does not know.
	ErrUnrecognizedDialect = errors.New("ddl: unrecognized dialect")

	// ErrUnknownType is returned when a type signature cannot be parsed.
	ErrUnknownType = errors.New("ddl: unknown type")

	// ErrInvalidModel is returned when a model document is inconsistent.
	ErrInvalidModel = errors.New("ddl: invalid model")
)
