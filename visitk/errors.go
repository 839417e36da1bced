package visitk

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownResponse the engine gave us a response without an http status
var ErrUnknownResponse = errors.New("an unknown error occurred")

// NoStatus is reported by the page script when a request failed without a response
const NoStatus = 0

// ErrorKind classifies visit failures
type ErrorKind int8

const (
	// NetworkFailure transport failure, no usable status code
	NetworkFailure ErrorKind = iota + 1
	// HTTPFailure response status outside [200, 300)
	HTTPFailure
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case HTTPFailure:
		return "http failure"
	}
	return "unknown failure"
}

// Error is the payload delivered to VisitRequestDidFailWithError
type Error struct {
	Kind       ErrorKind
	StatusCode int
	cause      error
}

// NewNetworkFailure wraps cause, a nil cause becomes ErrUnknownResponse
func NewNetworkFailure(cause error) *Error {
	if cause == nil {
		cause = ErrUnknownResponse
	}
	return &Error{Kind: NetworkFailure, cause: cause}
}

// NewHTTPFailure for a response with statusCode
func NewHTTPFailure(statusCode int) *Error {
	return &Error{Kind: HTTPFailure, StatusCode: statusCode}
}

// NewRequestFailure for a status reported by the page script, NoStatus means network failure
func NewRequestFailure(statusCode int) *Error {
	if statusCode == NoStatus {
		return NewNetworkFailure(nil)
	}
	return NewHTTPFailure(statusCode)
}

func (e *Error) Error() string {
	switch e.Kind {
	case HTTPFailure:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	default:
		if e.cause != nil {
			return fmt.Sprintf("%s: %s", e.Kind, e.cause)
		}
		return e.Kind.String()
	}
}

// Unwrap returns the underlying transport error, nil for http failures
func (e *Error) Unwrap() error {
	return e.cause
}

// IsHTTPFailure returns the status code if err is an HTTPFailure
func IsHTTPFailure(err error) (int, bool) {
	var verr *Error
	if errors.As(err, &verr) && verr.Kind == HTTPFailure {
		return verr.StatusCode, true
	}
	return 0, false
}

// IsNetworkFailure true if err is a NetworkFailure
func IsNetworkFailure(err error) bool {
	var verr *Error
	return errors.As(err, &verr) && verr.Kind == NetworkFailure
}
