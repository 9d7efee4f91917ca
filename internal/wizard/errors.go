package wizard

import (
	"errors"
	"fmt"
)

const (
	msgSelectPDF     = "Please upload a PDF file"
	msgMissingInput  = "Please upload a resume and enter job description"
	msgNoSession     = "Session not found"
	msgMissingAnswer = "Please enter an answer"
)

var (
	// ErrBusy is returned while another request of the wizard is in flight.
	ErrBusy = errors.New("another request is in progress")
	// ErrStaleResponse is returned when a response arrives after the wizard was reset.
	ErrStaleResponse = errors.New("response discarded: wizard was reset")
	ErrNoQuestions   = errors.New("no interview questions were generated")
)

// ValidationError is raised before any network call; the message is shown as is.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StageError rejects an action that the current stage does not allow.
type StageError struct {
	Action string
	Want   Stage
	Got    Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("cannot %s: wizard is in %s stage, expected %s", e.Action, e.Got, e.Want)
}
