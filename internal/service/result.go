package service

import "net/http"

// Result is the uniform envelope every service operation returns: success
// flag, payload, status hint for the transport layer, optional human message
// and a list of error strings. Transport code maps it straight onto the wire.
type Result[T any] struct {
	Succeeded bool     `json:"succeeded"`
	Data      T        `json:"data,omitempty"`
	Status    int      `json:"status"`
	Message   string   `json:"message,omitempty"`
	Errors    []string `json:"errors"`
}

// Success wraps data in a succeeded envelope with a 200 status hint.
func Success[T any](data T) *Result[T] {
	return &Result[T]{Succeeded: true, Data: data, Status: http.StatusOK, Errors: []string{}}
}

// Failed builds a failure envelope with the given status hint and errors.
func Failed[T any](status int, errs ...string) *Result[T] {
	return &Result[T]{Succeeded: false, Status: status, Errors: errs}
}

// WithMessage attaches an advisory message and returns the same envelope.
func (r *Result[T]) WithMessage(message string) *Result[T] {
	r.Message = message
	return r
}
