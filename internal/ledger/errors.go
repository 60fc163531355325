package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidExpenseInput = errors.New("invalid expense input")
	ErrShareMismatch       = errors.New("the sum of shares does not match the total amount")
	ErrNoExpensesFound     = errors.New("no expenses found")
)

// UnknownParticipantError reports a participant that does not reference an existing user.
type UnknownParticipantError struct {
	UserID string
}

func (e *UnknownParticipantError) Error() string {
	return fmt.Sprintf("user with id %s not found", e.UserID)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidExpenseInput, fmt.Sprintf(format, args...))
}
