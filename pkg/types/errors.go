package types

import (
	"errors"
	"fmt"
)

// ValidationError indicates bad trade parameters. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthenticationError indicates the auth handshake did not yield a token.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// UnknownOutcomeError indicates no market outcome matched the requested side.
type UnknownOutcomeError struct {
	Side     string
	MarketID string
}

func (e *UnknownOutcomeError) Error() string {
	return fmt.Sprintf("no outcome matching side %q in market %s", e.Side, e.MarketID)
}

// SigningError indicates the credential could not produce a signature.
type SigningError struct {
	Op  string
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed (%s): %v", e.Op, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// InvalidAmountError indicates a decimal amount that cannot be converted
// to base units.
type InvalidAmountError struct {
	Value  float64
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %v: %s", e.Value, e.Reason)
}

// APIError is a non-2xx response from the exchange. 5xx responses are
// retryable at the transport layer; 4xx responses are terminal.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange API error (status %d): %s", e.StatusCode, e.Body)
}

// Retryable reports whether the response indicates a server-side failure
// that is safe to retry with the same payload.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// TransportError wraps a network-level failure (dial, timeout, broken
// connection). Always retryable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether err may be retried with the same payload.
// Only transport failures and 5xx responses qualify; everything else is
// terminal.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}

	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Retryable()
	}

	return false
}
