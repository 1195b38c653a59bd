package approval

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrUnauthorized      = errors.New("authorization")

	ErrNotExpired    = fmt.Errorf("%w: travel time is inside the grace window", ErrInvalidTransition)
	ErrUnknownAction = fmt.Errorf("%w: unknown action", ErrInvalidTransition)
)
