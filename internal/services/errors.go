package services

import (
	"errors"

	"stylesync/internal/repositories"
)

var (
	// ErrConflict is returned when registering an email that already exists.
	ErrConflict = errors.New("user already exists")
	// ErrUnauthorized covers unknown emails, wrong passwords and bad tokens.
	ErrUnauthorized = errors.New("invalid email or password")
	// ErrBadRequest marks input the service refuses to store.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = repositories.ErrNotFound
)
