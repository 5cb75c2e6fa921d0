package radar

import "errors"

// Sentinel errors for layout inputs.
var (
	ErrInvalidDomain       = errors.New("invalid radar domain")
	ErrDegenerateAxisCount = errors.New("radar needs at least 3 axes")
	ErrSeriesMismatch      = errors.New("benchmark series length differs from user series")
)
