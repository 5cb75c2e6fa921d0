package service

import "errors"

// Sentinel kinds returned by Service operations.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidUser         = errors.New("invalid user info")
	ErrInvalidResponse     = errors.New("invalid response")
	ErrInvalidExperience   = errors.New("invalid experience rating")
	ErrInvalidRadar        = errors.New("invalid radar request")
	ErrMissingUser         = errors.New("user info is required before submitting")
	ErrMissingExperience   = errors.New("experience rating is required before submitting")
	ErrIncompleteResponses = errors.New("every question must be answered before submitting")
	ErrSubmissionInFlight  = errors.New("submission already in progress")
	ErrNotificationsOff    = errors.New("e-mail notifications are disabled")
)
