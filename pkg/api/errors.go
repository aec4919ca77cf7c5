package api

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBaseURL is returned when the client is constructed without
	// an API base URL.
	ErrEmptyBaseURL = errors.New("api: empty base URL")

	// ErrUnexpectedPayload is returned when the history response matches
	// neither the flat nor the nested envelope shape.
	ErrUnexpectedPayload = errors.New("api: unexpected history payload shape")
)

// SendError is the structured failure result of an outbound action
// (broadcast, targeted send, delete). It is surfaced to the caller so
// presentation code can show a toast; sends are never retried
// automatically.
type SendError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("api: %s failed: status %d", e.Op, e.StatusCode)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
