package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Common errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("validation error")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrMissingSigningKey  = errors.New("missing or unsupported token signing key")
)

var (
	ErrUserNotFound error = notFoundError{resource: "user"}
	ErrNoteNotFound error = notFoundError{resource: "note"}
)

type notFoundError struct {
	resource string
}

func (e notFoundError) Error() string {
	return e.resource + " not found"
}

func (e notFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError names the first input field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindInvalidToken
	KindExpiredToken
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindInvalidToken:
		return "invalid_token"
	case KindExpiredToken:
		return "expired_token"
	case KindNotFound:
		return "not_found"
	default:
		return "unexpected"
	}
}

// KindOf classifies err. Anything not produced by this package is unexpected.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnexpected
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUserExists):
		return KindConflict
	case errors.Is(err, ErrInvalidCredentials):
		return KindAuthentication
	case errors.Is(err, ErrExpiredToken):
		return KindExpiredToken
	case errors.Is(err, ErrInvalidToken):
		return KindInvalidToken
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindUnexpected
	}
}

const uniqueViolation = "23505"

// translateError maps storage errors with a known meaning onto the service
// errors and wraps the rest so they surface as unexpected.
func translateError(err error, notFound error, op string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrUserExists
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return ErrUserExists
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
