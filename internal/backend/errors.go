package backend

import (
	"errors"
	"fmt"
)

// TransportError means no usable response arrived: the request failed, the
// body was not JSON, or it did not match the endpoint's schema.
type TransportError struct {
	Endpoint string
	Message  string
	Cause    error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend %s: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("backend %s: %s", e.Endpoint, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// AppError is a well-formed response reporting failure. Message is the
// backend's error text and may be empty.
type AppError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Sprintf("backend %s (status %d): %s", e.Endpoint, e.Status, msg)
}

// MessageOr returns the backend message, or fallback when there is none.
func (e *AppError) MessageOr(fallback string) string {
	if e.Message == "" {
		return fallback
	}
	return e.Message
}

// SchemaError is a response that parsed as JSON but did not match the
// endpoint's schema. It is always reported wrapped in a TransportError.
type SchemaError struct {
	Endpoint string
	Cause    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("backend %s: unexpected response shape: %v", e.Endpoint, e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsApp returns the application error in err's chain, if any.
func AsApp(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
