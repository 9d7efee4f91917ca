package aura

import "fmt"

// HTTPError is a non-2xx answer from the backend. Its message is meant for the user:
// the body's detail when the endpoint provides one, a generic text otherwise.
type HTTPError struct {
	Op         string
	StatusCode int
	Status     string
	Detail     string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// TransportError is a request that never produced an HTTP status: dial failures,
// timeouts, cancellation, unreadable bodies.
type TransportError struct {
	Op      string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ShapeError is a 2xx response that lacks a field the client depends on,
// or carries it with an unusable type.
type ShapeError struct {
	Op    string
	Field string
	Err   error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected %s response: field %q: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("unexpected %s response: missing %q", e.Op, e.Field)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}
