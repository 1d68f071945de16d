package registration

import (
	"errors"
	"fmt"

	"github.com/spotfinder/backend/internal/models"
)

var (
	ErrFlowClosed   = errors.New("registration already submitted")
	ErrFlowNotFound = errors.New("registration not found")
	// ErrSuperseded is returned to a selection whose lookup finished after a newer click.
	ErrSuperseded = errors.New("selection superseded by a newer one")
)

// ValidationError is a local check that failed before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubmissionError wraps a failure to persist the new location.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("save location: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ConfirmationRequiredError interrupts a submit while nearby locations exist.
// Resubmitting with confirmation proceeds.
type ConfirmationRequiredError struct {
	Matches []models.ProximityMatch
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%d existing locations nearby, confirmation required", len(e.Matches))
}
