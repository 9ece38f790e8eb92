package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure that crosses the service boundary.
type ErrorKind string

const (
	KindTransport    ErrorKind = "transport"
	KindValidation   ErrorKind = "validation"
	KindPlanLimit    ErrorKind = "plan_limit"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindUpstream     ErrorKind = "upstream"
)

// Failure is the error type returned by resource services.
// Status is the backend HTTP status, or 0 when no response arrived.
type Failure struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Status == 0 {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	return fmt.Sprintf("%s [%d]: %s", f.Kind, f.Status, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == kind
}

// Result is {ok, value} or {ok:false, kind, message}.
type Result[T any] struct {
	OK      bool      `json:"ok"`
	Value   T         `json:"value,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Message string    `json:"message,omitempty"`
}

func Ok[T any](v T) Result[T] {
	return Result[T]{OK: true, Value: v}
}

func Fail[T any](kind ErrorKind, message string) Result[T] {
	return Result[T]{Kind: kind, Message: message}
}

// ResultOf folds a (value, error) pair. Errors that are not a *Failure
// are reported as upstream failures.
func ResultOf[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	if f, ok := AsFailure(err); ok {
		return Fail[T](f.Kind, f.Message)
	}
	return Fail[T](KindUpstream, err.Error())
}
