package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProvider is returned when a provider identifier is not in the profile table.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrMissingCredential is returned before any network I/O when the raw HTTP
	// transport has no API key configured.
	ErrMissingCredential = errors.New("missing api credential")

	// ErrMalformedResponse is returned by StrictContent when the raw HTTP payload
	// does not carry choices[0].message.content.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// TransportError reports a failed upstream round-trip.
// StatusCode is 0 when no HTTP status was received (DNS, TLS, timeout...).
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by a TransportError anywhere in
// err's chain, or 0.
func StatusOf(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
