package dedupe

import "errors"

var (
	// ErrEmptyRequestID indicates a caller passed an empty id to Begin.
	// Callers are expected to bypass the store entirely for such requests.
	ErrEmptyRequestID = errors.New("dedupe: empty request id")

	// ErrInvalidStatus indicates Complete was called with a non-terminal status.
	ErrInvalidStatus = errors.New("dedupe: status must be terminal")
)
