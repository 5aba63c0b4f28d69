package graph

import "errors"

// Error kinds returned by View operations. Wrap with fmt.Errorf("%w: ...")
// for context; callers should match with errors.Is against these sentinels.
var (
	ErrMissingKey   = errors.New("missing key")
	ErrTypeMismatch = errors.New("type mismatch")
	ErrOutOfRange   = errors.New("out of range")
	ErrInvalidValue = errors.New("invalid value")
	ErrStaleView    = errors.New("stale view")
	ErrCorruption   = errors.New("corruption")
)
