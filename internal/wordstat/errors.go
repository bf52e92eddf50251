package wordstat

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a fetch failure so the scheduler can pick a retry
// policy without inspecting raw HTTP details.
type Kind string

const (
	// KindTimeout is a request that exceeded a deadline, either locally
	// or at an upstream gateway.
	KindTimeout Kind = "timeout"

	// KindAuth is a rejected or expired credential. The whole session
	// cannot succeed, so the scheduler stops on it.
	KindAuth Kind = "auth"

	// KindRateLimited is an upstream quota rejection, distinct from the
	// local rate limiter.
	KindRateLimited Kind = "rate_limited"

	// KindServer is an upstream 5xx failure.
	KindServer Kind = "server"

	// KindClient is a request the API considers malformed. Retrying the
	// same request cannot help, so the task is skipped.
	KindClient Kind = "client"

	// KindNetwork is a transport-level failure before any HTTP status
	// was received.
	KindNetwork Kind = "network"

	// KindUnknown is anything that does not fit the other kinds.
	KindUnknown Kind = "unknown"
)

// APIError is a classified fetch failure.
type APIError struct {
	// Kind is the retry-policy classification.
	Kind Kind

	// StatusCode is the HTTP status, or zero for transport failures.
	StatusCode int

	// Message is the upstream error text, if any.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("wordstat api error (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("wordstat api error (%s): %s", e.Kind, e.Message)
}

// ClassifyStatus maps an HTTP status code to an error kind.
func ClassifyStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindClient
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return KindServer
	case http.StatusGatewayTimeout:
		return KindTimeout
	}

	switch {
	case status >= 400 && status < 500:
		return KindClient
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// KindOf extracts the classification from an error. Non-API errors are
// reported as KindUnknown.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// Retryable reports whether the error is worth retrying with backoff.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindRateLimited, KindServer, KindUnknown:
		return true
	default:
		return false
	}
}

// Fatal reports whether the error should stop the whole session.
func Fatal(err error) bool {
	switch KindOf(err) {
	case KindAuth, KindNetwork:
		return true
	default:
		return false
	}
}
