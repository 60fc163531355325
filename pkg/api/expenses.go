package api

// Participant names a user taking part in a new expense.
// Share is the exact amount for "exact" splits and the percentage for
// "percentage" splits. It is ignored for "equal" splits and may be omitted.
type Participant struct {
	UserID string   `json:"user_id"`
	Share  *float64 `json:"share,omitempty"`
}

// Share is one participant's computed portion of an expense.
type Share struct {
	UserID string  `json:"user_id"`
	Share  float64 `json:"share"`
}

// Expense is a recorded expense with all participant shares.
type Expense struct {
	ID           string  `json:"id"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	SplitMethod  string  `json:"split_method"`
	CreatedBy    string  `json:"created_by"`
	CreatedAt    int64   `json:"created_at"`
	Participants []Share `json:"participants"`
}

// CreateExpenseRequest records an expense paid by the caller.
// SplitMethod is one of "equal", "exact" or "percentage".
type CreateExpenseRequest struct {
	Description  string        `json:"description"`
	Amount       float64       `json:"amount"`
	SplitMethod  string        `json:"split_method"`
	Participants []Participant `json:"participants"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UserExpense is an expense seen by the caller, with the caller's share.
type UserExpense struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	SplitMethod string  `json:"split_method"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   int64   `json:"created_at"`
	UserShare   float64 `json:"user_share"`
}

type GetUserExpensesRequest struct{}

type GetUserExpensesResponse struct {
	Expenses []*UserExpense `json:"expenses"`
}

type GetAllExpensesRequest struct{}

type GetAllExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}
