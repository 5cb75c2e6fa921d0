package session

import "errors"

// Sentinel errors for session state changes.
var (
	ErrInvalidExperience = errors.New("experience rating must be between 1 and 5")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrRatingOutOfRange  = errors.New("rating outside question scale")
)
