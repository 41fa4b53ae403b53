package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/foodexpress/storefront/internal/domain"
)

var (
	// ErrNotInCheckout is returned when Submit is called outside the
	// checkout phase. That is a caller bug, not a user error.
	ErrNotInCheckout = errors.New("submit is only valid in the checkout phase")

	// ErrIllegalTransition is returned for a phase change the session
	// state machine does not allow.
	ErrIllegalTransition = errors.New("illegal session phase transition")

	// ErrNoOrderID means the store accepted the order header but returned
	// no identifier, so the lines cannot be attached.
	ErrNoOrderID = errors.New("store returned no order id")

	// ErrSessionClosed is returned by operations on a torn-down session.
	ErrSessionClosed = errors.New("session is closed")
)

// ValidationError reports which required checkout fields are missing.
// No store write has happened when it is returned; the user corrects the
// form and retries.
type ValidationError struct {
	Missing []domain.CustomerField
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		fields = append(fields, string(f))
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(fields, ", "))
}

// SubmissionError means a store write failed during submission. The cart
// and customer draft are preserved so the user may retry.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Cause)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}
