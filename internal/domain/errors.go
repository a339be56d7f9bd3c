package domain

import (
	"errors"
	"fmt"
)

// Store level sentinels. Services translate them into kinded errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Kind classifies a failure so the transport layer can map it once.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "server"
	}
}

// Error is a failure with a kind and a client facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error of the given kind.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func ValidationError(message string) *Error {
	return NewError(KindValidation, message, nil)
}

func ConflictError(message string, cause error) *Error {
	return NewError(KindConflict, message, cause)
}

func NotFoundError(message string, cause error) *Error {
	return NewError(KindNotFound, message, cause)
}

func UnauthorizedError(message string) *Error {
	return NewError(KindUnauthorized, message, nil)
}

func ForbiddenError(message string, cause error) *Error {
	return NewError(KindForbidden, message, cause)
}

// KindOf reports the kind of err; unclassified errors are KindServer.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindServer
}

// MessageOf returns the client facing message of a kinded error, or fallback.
func MessageOf(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindServer && de.Message != "" {
		return de.Message
	}
	return fallback
}
