package api

// BalanceEntry is one expense in the caller's balance view.
type BalanceEntry struct {
	ExpenseID   string  `json:"expense_id"`
	Description string  `json:"description"`
	TotalAmount float64 `json:"total_amount"`
	Payer       string  `json:"payer"`
	Shares      []Share `json:"shares"`
	CreatedAt   int64   `json:"created_at"`
}

type GetBalanceRequest struct{}

type GetBalanceResponse struct {
	Balance []*BalanceEntry `json:"balance"`
}

// ExportRow is one (expense, participant) line of a balance export.
type ExportRow struct {
	ExpenseID   string  `json:"expense_id"`
	Description string  `json:"description"`
	TotalAmount float64 `json:"total_amount"`
	Payer       string  `json:"payer"`
	UserID      string  `json:"user_id"`
	Share       float64 `json:"share"`
	CreatedAt   int64   `json:"created_at"`
}

type ExportBalanceRequest struct{}

type ExportBalanceResponse struct {
	Rows []*ExportRow `json:"rows"`
}

// MemberBalance is what one user paid and owes across the caller's expenses.
// A positive NetBalance means the user is owed money.
type MemberBalance struct {
	UserID     string  `json:"user_id"`
	TotalPaid  float64 `json:"total_paid"`
	TotalOwed  float64 `json:"total_owed"`
	NetBalance float64 `json:"net_balance"`
}

// Debt is a suggested payment from one user to another.
type Debt struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type GetBalanceSummaryRequest struct{}

type GetBalanceSummaryResponse struct {
	Members []*MemberBalance `json:"members"`
	Debts   []*Debt          `json:"debts"`
}
