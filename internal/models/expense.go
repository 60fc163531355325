package models

// SplitMethod identifies how an expense's amount is divided among participants.
// The string value is also the wire representation.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitExact      SplitMethod = "exact"
	SplitPercentage SplitMethod = "percentage"
)

// Valid reports whether m is one of the known split methods.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitExact, SplitPercentage:
		return true
	}
	return false
}

// Expense represents a shared cost created by one user and split among participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is the human-readable description of the expense.
	Description string

	// Amount is the total cost of the expense. Always positive.
	Amount float64

	// SplitMethod is the algorithm used to compute the shares.
	SplitMethod SplitMethod

	// CreatedBy is the user ID of the creator, who is also the payer.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// Shares are the participant shares of this expense, in insertion order.
	// The creator is always among them.
	Shares []ParticipantShare
}

// ShareOf returns the share owed by userID and whether the user takes part in the expense.
func (e *Expense) ShareOf(userID string) (float64, bool) {
	for _, s := range e.Shares {
		if s.UserID == userID {
			return s.Share, true
		}
	}
	return 0, false
}

// ParticipantShare represents one user's portion of an expense.
type ParticipantShare struct {
	// ID is the unique identifier for the share row (UUID format).
	ID string

	// ExpenseID is the owning expense.
	ExpenseID string

	// UserID is the participant.
	UserID string

	// Share is the amount this participant owes, in the expense's currency unit.
	Share float64
}
