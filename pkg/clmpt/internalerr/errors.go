package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound              = errors.New("not found")
	ErrMalformedLDict        = errors.New("malformed ldict")
	ErrUnsupportedOp         = errors.New("unsupported operator")
	ErrDuplicateAtomic       = errors.New("duplicate atomic")
	ErrUnknownName           = errors.New("unknown term or relation name")
	ErrInconsistentInstances = errors.New("inconsistent instance lists")
	ErrInvalidConfig         = errors.New("invalid configuration")
)
