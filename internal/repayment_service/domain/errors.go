package domain

import "errors"

var (
	// ErrMalformedPayload means a required field was missing or unparsable.
	// It is raised by the normalizer, before any validation rule runs.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrResolverUnavailable wraps any failure of a backing store consulted
	// during validation.
	ErrResolverUnavailable = errors.New("resolver unavailable")
	// ErrOutcomeAlreadySet is returned when a payment already carries an outcome.
	ErrOutcomeAlreadySet = errors.New("outcome already set")
)
