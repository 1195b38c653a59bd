package notification

import "errors"

var (
	ErrInvalidTarget = errors.New("notification must target exactly one of user or role")
	ErrNotFound      = errors.New("notification not found")
)
