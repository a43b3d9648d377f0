// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Validation sentinels. These fail fast: no network call is made when a
// store returns one of them.
var (
	// ErrNameRequired indicates a client create without a name.
	ErrNameRequired = errors.New("client name required")

	// ErrTitleRequired indicates a request create without a title.
	ErrTitleRequired = errors.New("request title required")

	// ErrDescRequired indicates a request create without a description.
	ErrDescRequired = errors.New("request description required")

	// ErrClientRequired indicates an open-attachment update without a client id.
	ErrClientRequired = errors.New("client id required")

	// ErrStatusRequired indicates a close without a status.
	ErrStatusRequired = errors.New("close status required")

	// ErrReasonRequired indicates a close without a reason.
	ErrReasonRequired = errors.New("close reason required")
)
