package service

import "errors"

var ( // Define custom errors
	// ErrInvalidDecision is returned when a manual review decision is
	// anything other than approved or rejected.
	ErrInvalidDecision = errors.New("decision must be 'approved' or 'rejected'")
	// ErrPermissionDenied is returned when a user acts on content they do
	// not own.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrContentHidden is returned when a non-owner reads content that has
	// no approved public version yet. Surfaced as not-found.
	ErrContentHidden = errors.New("content has no public version")
	// ErrEmptyUpdate is returned when an update request carries no fields.
	ErrEmptyUpdate = errors.New("no fields to update")
)
