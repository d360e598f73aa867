package geolib

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/multierr"
)

var (
	ErrAllProvidersFailed = errors.New("all providers failed")
	ErrNoProviders        = errors.New("no providers are configured")
	ErrInvalidIP          = errors.New("invalid ip address")
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	ErrEmptyResponse      = errors.New("empty response")
)

// StatusError is returned by HTTPClient if netloc has responded with
// unexpected status code.
type StatusError struct {
	StatusCode int
	Status     string
}

func (s *StatusError) Error() string {
	return "netloc has responded with " + s.Status
}

// ProviderError is an error of a single provider. These errors are
// always recovered by Resolver and never shown to the users.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (p *ProviderError) Error() string {
	msg := "provider " + p.Provider

	if p.StatusCode != 0 {
		msg += " (status " + strconv.Itoa(p.StatusCode) + ")"
	}

	if p.Err != nil {
		msg += ": " + p.Err.Error()
	}

	return msg
}

func (p *ProviderError) Unwrap() error {
	return p.Err
}

// NewProviderError wraps err into ProviderError. If there is a
// StatusError in a chain, its status code is propagated.
func NewProviderError(provider string, err error) *ProviderError {
	rv := &ProviderError{
		Provider: provider,
		Err:      err,
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		rv.StatusCode = statusErr.StatusCode
	}

	return rv
}

// AllProvidersFailedError is returned by Resolver if none of providers
// was able to respond.
type AllProvidersFailedError struct {
	err error
}

func (a *AllProvidersFailedError) Error() string {
	if a.err == nil {
		return ErrAllProvidersFailed.Error()
	}

	return ErrAllProvidersFailed.Error() + ": " + a.err.Error()
}

func (a *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

func (a *AllProvidersFailedError) Unwrap() error {
	return a.err
}

// Failures returns a list of errors of each provider in order of
// querying.
func (a *AllProvidersFailedError) Failures() []error {
	return multierr.Errors(a.err)
}

type jsonHTTPError struct {
	Error string `json:"error"`
}

type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

// MarshalJSON never exposes a wrapped error: it may contain details of
// upstream services.
func (h *httpError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&jsonHTTPError{
		Error: h.Message(),
	})
}
