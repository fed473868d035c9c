package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrExpired      = errors.New("link expired")
)

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// translate maps a missing record to ErrNotFound and wraps anything else.
func translate(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("%s", what)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict("%s", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
