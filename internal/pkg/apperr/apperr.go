// Package apperr defines the error taxonomy shared by the service clients,
// the resilience layer and the caller boundary.
//
// Every failure that crosses a package boundary is an *Error with one of the
// kinds below. The resilience layer uses Transient to decide what to retry
// and what to count against the circuit breaker; the HTTP boundary uses
// HTTPStatus to map the same errors to response codes.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind string

const (
	// KindNotFound: the dependency reports the referenced entity does not
	// exist. Not retryable; does not count against the circuit breaker.
	KindNotFound Kind = "not_found"

	// KindUnavailable: transport error, timeout or 5xx-equivalent.
	// Retryable; counts against the circuit breaker.
	KindUnavailable Kind = "unavailable"

	// KindRejected: the dependency explicitly rejected the request as
	// invalid. Not retryable; does not count against the circuit breaker.
	KindRejected Kind = "rejected"

	// KindValidation: caller input failed validation before the saga
	// started.
	KindValidation Kind = "validation"

	// KindSagaAborted: a step failed irrecoverably after exhausting the
	// resilience policy and the saga stopped.
	KindSagaAborted Kind = "saga_aborted"

	// KindInternal covers everything else.
	KindInternal Kind = "internal"
)

// Error is the typed error carried across package boundaries.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "order-service.create-order"
	// or the saga step name for aborts.
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes two *Errors match on kind, so
// errors.Is(err, &Error{Kind: KindNotFound}) works without comparing text.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func NotFound(op, msg string) error {
	return &Error{Kind: KindNotFound, Op: op, Message: msg}
}

func Unavailable(op, msg string, cause error) error {
	return &Error{Kind: KindUnavailable, Op: op, Message: msg, Err: cause}
}

func Rejected(op, msg string) error {
	return &Error{Kind: KindRejected, Op: op, Message: msg}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Abort wraps a step failure into the saga-aborted error the coordinator
// surfaces. Op carries the name of the step that failed.
func Abort(step string, cause error) error {
	return &Error{Kind: KindSagaAborted, Op: step, Err: cause}
}

// KindOf returns the kind of err, unwrapping as needed. Context
// cancellation and deadline errors classify as internal and unavailable
// respectively, matching how the clients treat them.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		if e := asError(err); e != nil {
			return e.Kind
		}
		return KindUnavailable
	case errors.Is(err, context.Canceled):
		return KindInternal
	}
	if e := asError(err); e != nil {
		return e.Kind
	}
	return KindInternal
}

// AbortedStep returns the failed step name when err is a saga abort.
func AbortedStep(err error) (string, bool) {
	e := asError(err)
	if e == nil || e.Kind != KindSagaAborted {
		return "", false
	}
	return e.Op, true
}

// Transient reports whether err represents a failure worth retrying, which
// is also the set of failures that count against the circuit breaker.
// NotFound and Rejected are business outcomes, not dependency failures.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if e := asError(err); e != nil {
		return e.Kind == KindUnavailable
	}
	// Untyped errors from the transport path (connection refused, attempt
	// timeout) are treated as transient.
	return true
}

// HTTPStatus maps err to the response status the caller boundary writes.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindRejected:
		return http.StatusUnprocessableEntity
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindSagaAborted:
		// An abort caused by an unavailable dependency is a 503; anything
		// else is an internal failure.
		var e *Error
		if errors.As(err, &e) && KindOf(e.Err) == KindUnavailable {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
