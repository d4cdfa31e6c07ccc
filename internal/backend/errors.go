package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps transport failures talking to the backend
	ErrUnavailable = errors.New("backend unavailable")
	// ErrInvalidPurpose is returned for an email purpose the backend has no endpoint for
	ErrInvalidPurpose = errors.New("invalid email purpose")
)

// Error is a non-2xx answer from the backend
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}
