package graph

import (
	"encoding/json"
	"fmt"
	"math"
)

// encodeScalar renders v as its standard JSON textual encoding. v must be
// nil, bool, float64, or string; anything else (including a *View, which
// belongs only in container position) is ErrInvalidValue.
func encodeScalar(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return []byte("null"), nil
	case bool, string:
		return json.Marshal(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: non-finite number", ErrInvalidValue)
		}
		return json.Marshal(t)
	default:
		return nil, fmt.Errorf("%w: %T is not a scalar", ErrInvalidValue, v)
	}
}

// decodeScalar is the inverse of encodeScalar. A stored value that fails to
// parse as JSON is a corruption error, not an invalid-value error: the
// store's own writes are assumed well-formed, so a decode failure here means
// the record was damaged after the fact.
func decodeScalar(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	return v, nil
}

// isScalar reports whether v belongs in scalar (leaf) position.
func isScalar(v any) bool {
	switch v.(type) {
	case nil, bool, string, float64:
		return true
	default:
		return false
	}
}
