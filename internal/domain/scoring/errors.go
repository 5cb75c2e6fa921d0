package scoring

import "errors"

// Sentinel errors for scoring.
var (
	ErrInvalidScale = errors.New("invalid rating scale")
)
