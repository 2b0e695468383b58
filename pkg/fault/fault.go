// Package fault defines the error taxonomy shared by the Lifeline services.
// Every failure crossing a service boundary is classified so handlers and the
// chat dispatcher can map it to a structured, non-technical response instead
// of leaking a raw fault.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindValidation marks bad or missing caller input. Never retried.
	KindValidation Kind = "validation"
	// KindStore marks an unreachable or rejecting data store. The caller may
	// retry with backoff; the core never retries on its own.
	KindStore Kind = "store"
	// KindModel marks a language model API failure or quota exhaustion.
	KindModel Kind = "model"
	// KindUnknown is the fallback classification.
	KindUnknown Kind = "unknown"
)

// Error is a classified error with an optional offending field.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Field, e.Msg, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a caller-input error for the given field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// Store wraps a data store failure.
func Store(err error) *Error {
	return &Error{Kind: KindStore, Msg: "data store unavailable", Err: err}
}

// Model wraps a language model failure.
func Model(err error) *Error {
	return &Error{Kind: KindModel, Msg: "language model unavailable", Err: err}
}

// KindOf extracts the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}
