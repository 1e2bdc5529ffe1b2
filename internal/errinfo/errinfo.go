// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errinfo classifies user-visible desk errors into validation,
// transformation, and environment failures.
package errinfo

import (
	"errors"
	"fmt"
)

// Kind is the error class.
type Kind string

const (
	// KindValidation covers wrong file types, missing files or inputs,
	// malformed credentials, and bad indices. Always recovered locally.
	KindValidation Kind = "validation"
	// KindTransformation covers failures of the PDF library or empty documents.
	KindTransformation Kind = "transformation"
	// KindEnvironment covers a missing external dependency (container runtime,
	// conversion image).
	KindEnvironment Kind = "environment"
	// KindConflict covers an action rejected because of current state, such
	// as a second invocation while one is running.
	KindConflict Kind = "conflict"
)

// Error carries a user-facing message and its class.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a validation error with the formatted message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Transformation wraps err as a transformation failure.
func Transformation(message string, err error) *Error {
	return &Error{Kind: KindTransformation, Message: message, Err: err}
}

// Environment wraps err as an environment failure.
func Environment(message string, err error) *Error {
	return &Error{Kind: KindEnvironment, Message: message, Err: err}
}

// Conflict returns a conflict error wrapping the sentinel err.
func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

// KindOf reports the class of err. Unclassified errors are treated as
// transformation failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransformation
}

// Message returns the user-facing text of err, or fallback when err carries
// none.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
