package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no entity matches the lookup key.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate surfaces a storage uniqueness violation on create. The
	// store is the enforcement point, so this can fire even after the
	// pre-checks passed when two confirms race.
	ErrDuplicate = errors.New("entity already exists")

	// ErrMSISDNTaken indicates the phone number already owns an entity.
	ErrMSISDNTaken = errors.New("entity msisdn already exists")

	// ErrUsernameTaken indicates the username belongs to another entity.
	ErrUsernameTaken = errors.New("entity username already exists")

	// ErrIncorrectCode indicates the provider rejected the submitted code.
	ErrIncorrectCode = errors.New("incorrect code")
)

// MissingFieldError reports the first required request field found absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}
