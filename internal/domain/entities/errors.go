package entities

import "errors"

// Domain errors
var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidPriority = errors.New("invalid priority")
)
