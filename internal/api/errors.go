package api

import (
	"errors"
	"fmt"
)

// Kind classifies a request outcome for callers.
type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED" // 401: missing or garbage token
	KindForbidden       Kind = "FORBIDDEN"       // 403: token rejected
	KindRequestFailed   Kind = "REQUEST_FAILED"  // any other non-2xx
	KindTransport       Kind = "TRANSPORT"       // network-level failure
	KindDecode          Kind = "DECODE"          // 2xx body did not match the declared shape
)

// Error is the single error type the gateway surfaces. Views decide
// presentation per kind; nothing below them retries or swallows.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying transport or decode error.
func (e *Error) Unwrap() error {
	return e.cause
}

func newUnauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Status: 401, Message: "authentication required"}
}

func newForbidden() *Error {
	return &Error{Kind: KindForbidden, Status: 403, Message: "invalid credentials"}
}

func newRequestFailed(status int, detail string) *Error {
	if detail == "" {
		detail = "request failed"
	}
	return &Error{Kind: KindRequestFailed, Status: status, Message: detail}
}

func newTransport(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), cause: err}
}

func newDecode(err error) *Error {
	return &Error{Kind: KindDecode, Message: fmt.Sprintf("unexpected response shape: %v", err), cause: err}
}

// HasKind reports whether err is a gateway Error of the given kind.
func HasKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}
