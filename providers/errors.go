package providers

import "errors"

var (
	// ErrAuthTokenIsRequired is returned if you are trying to initialize
	// a provider which requires some token to work.
	ErrAuthTokenIsRequired = errors.New("auth token is required")

	// ErrUnknownProvider is returned by New if there is no provider
	// with such name.
	ErrUnknownProvider = errors.New("unknown provider")
)
