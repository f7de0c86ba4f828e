package services

import "errors"

// Authorization and lookup failures are plain errors with human-readable
// messages; controllers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrLeadAccessDenied     = errors.New("you do not have access to this lead")
	ErrReassignDenied       = errors.New("only managers can reassign leads")
	ErrSequenceAccessDenied = errors.New("you do not have access to this sequence")
)
