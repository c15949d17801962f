package usecase

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a user-facing action receives blank text.
var ErrEmptyInput = errors.New("empty input")

// ErrNoTurns is returned when an action requires at least one completed
// (user, assistant) pair and the conversation has none.
var ErrNoTurns = errors.New("conversation has no completed turns")

// ErrNotInitialized is returned when a conversation action runs before
// the session was initialized.
var ErrNotInitialized = errors.New("conversation not initialized")

// UpstreamError wraps a failure from an external collaborator. The action
// either degrades locally (audio, transcription) or surfaces this as a
// retryable error (chat completion).
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}
