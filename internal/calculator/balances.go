package calculator

import (
	"cmp"
	"fmt"
	"slices"
)

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	Amount  float64
	PayerID string
	Shares  []Allocation
}

// MemberBalance represents the balance information for one user.
type MemberBalance struct {
	UserID     string
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Total amount paid across all expenses
	TotalOwed  float64 // Total amount this person owes
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// CalculateBalances computes balances across multiple expenses.
// It aggregates who paid what and who owes what, returning both individual
// member balances and a simplified list of debts.
//
// Algorithm:
// - For each expense: payer contributed +amount, each participant owes their share
// - Aggregate: net_balance = total_paid - total_owed
// - Debts: simplified using greedy matching, largest amounts first
//
// Members are ordered by user ID.
func CalculateBalances(expenses []ExpenseForBalance) ([]MemberBalance, []DebtEdge, error) {
	balances := make(map[string]*MemberBalance)
	member := func(userID string) *MemberBalance {
		if _, exists := balances[userID]; !exists {
			balances[userID] = &MemberBalance{UserID: userID}
		}
		return balances[userID]
	}

	for i, expense := range expenses {
		if expense.PayerID == "" {
			return nil, nil, fmt.Errorf("expense %d has no payer", i)
		}

		member(expense.PayerID).TotalPaid += expense.Amount
		for _, share := range expense.Shares {
			member(share.UserID).TotalOwed += share.Share
		}
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.NetBalance = bal.TotalPaid - bal.TotalOwed
		memberBalances = append(memberBalances, *bal)
	}
	slices.SortFunc(memberBalances, func(a, b MemberBalance) int {
		return cmp.Compare(a.UserID, b.UserID)
	})

	return memberBalances, simplifyDebts(memberBalances), nil
}

// simplifyDebts matches debtors with creditors to minimize transactions.
func simplifyDebts(balances []MemberBalance) []DebtEdge {
	var creditors []MemberBalance
	var debtors []MemberBalance
	for _, bal := range balances {
		if bal.NetBalance > 0.01 {
			creditors = append(creditors, bal)
		} else if bal.NetBalance < -0.01 {
			debtors = append(debtors, bal)
		}
	}

	// Largest amounts first; ties broken by user ID so the result is stable.
	byMagnitude := func(a, b MemberBalance) int {
		if c := cmp.Compare(abs(b.NetBalance), abs(a.NetBalance)); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	}
	slices.SortFunc(creditors, byMagnitude)
	slices.SortFunc(debtors, byMagnitude)

	debtorBalance := make(map[string]float64, len(debtors))
	creditorBalance := make(map[string]float64, len(creditors))
	for _, debtor := range debtors {
		debtorBalance[debtor.UserID] = -debtor.NetBalance
	}
	for _, creditor := range creditors {
		creditorBalance[creditor.UserID] = creditor.NetBalance
	}

	var debtEdges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].UserID
		creditor := creditors[j].UserID

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := min(debtorBalance[debtor], creditorBalance[creditor])

		if amount > 0.01 { // Avoid floating point noise
			debtEdges = append(debtEdges, DebtEdge{
				From:   debtor,
				To:     creditor,
				Amount: amount,
			})
		}

		debtorBalance[debtor] -= amount
		creditorBalance[creditor] -= amount

		if debtorBalance[debtor] < 0.01 {
			i++
		}
		if creditorBalance[creditor] < 0.01 {
			j++
		}
	}

	return debtEdges
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
