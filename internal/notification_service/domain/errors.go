package domain

import "errors"

var (
	// ErrMissingTemplate means no phrase could be found for a template in any
	// language, or the template itself does not exist.
	ErrMissingTemplate = errors.New("missing template")
	// ErrNoRecipient means the client has no phone number on record.
	ErrNoRecipient = errors.New("client has no phone number")
	// ErrClientNotFound is returned by client lookups used by the HTTP surface.
	ErrClientNotFound = errors.New("client not found")
	// ErrNoSender means no sender identity is configured for the channel.
	ErrNoSender = errors.New("no sender configured for channel")
)
