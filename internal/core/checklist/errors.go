package checklist

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInvalidState        ErrorKind = "INVALID_STATE"
	KindAlreadyExists       ErrorKind = "ALREADY_EXISTS"
	KindAlreadySigned       ErrorKind = "ALREADY_SIGNED"
	KindAlreadyReviewed     ErrorKind = "ALREADY_REVIEWED"
	KindAlreadyCompleted    ErrorKind = "ALREADY_COMPLETED"
	KindInvalidInput        ErrorKind = "INVALID_INPUT"
	KindMissingRequiredItem ErrorKind = "MISSING_REQUIRED_ITEM"
	KindMissingSignature    ErrorKind = "MISSING_SIGNATURE"
	KindNoSignatures        ErrorKind = "NO_SIGNATURES"
	KindNoPendingReview     ErrorKind = "NO_PENDING_REVIEW"
)

// Error is a typed workflow error. Subject names the offending item label or
// role for completion-gate failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Subject string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a typed error.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a workflow error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a workflow error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
