package service

import "errors"

// Domain errors surfaced to controllers. Bad password and unknown user both
// map to ErrInvalidCredentials; callers never learn which one happened.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrMissingDocument    = errors.New("please upload a document first")
	ErrNoSummary          = errors.New("no summary has been generated yet")
	ErrSessionExpired     = errors.New("session expired, please log in again")
)
