package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ShareView is one participant's share in a report.
type ShareView struct {
	UserID string  `json:"user_id"`
	Share  float64 `json:"share"`
}

// UserExpense is an expense seen from one user, with that user's share.
type UserExpense struct {
	ID          string
	Description string
	Amount      float64
	SplitMethod models.SplitMethod
	CreatedBy   string
	CreatedAt   int64
	UserShare   float64
}

// ExpenseDetail is an expense with every participant's share.
type ExpenseDetail struct {
	ID           string
	Description  string
	Amount       float64
	SplitMethod  models.SplitMethod
	CreatedBy    string
	CreatedAt    int64
	Participants []ShareView
}

// BalanceEntry is one line of a user's balance view.
type BalanceEntry struct {
	ExpenseID   string      `json:"expense_id"`
	Description string      `json:"description"`
	TotalAmount float64     `json:"total_amount"`
	Payer       string      `json:"payer"`
	Shares      []ShareView `json:"shares"`
	CreatedAt   int64       `json:"created_at"`
}

// ExportRow is one (expense, participant) pair of a flat export.
type ExportRow struct {
	ExpenseID   string
	Description string
	TotalAmount float64
	Payer       string
	UserID      string
	Share       float64
	CreatedAt   int64
}

// BalanceSummary is the net position of everyone sharing expenses with a user.
type BalanceSummary struct {
	Members []calculator.MemberBalance
	Debts   []calculator.DebtEdge
}

// Reporter serves the read side of the ledger.
type Reporter struct {
	store  storage.Store
	cache  BalanceCache
	logger *slog.Logger
}

// NewReporter creates a reporter. cache may be nil.
func NewReporter(store storage.Store, cache BalanceCache, logger *slog.Logger) *Reporter {
	if cache == nil {
		cache = nopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{store: store, cache: cache, logger: logger}
}

// GetUserExpenses lists the user's expenses with the user's own share of each.
func (r *Reporter) GetUserExpenses(ctx context.Context, userID string) ([]UserExpense, error) {
	expenses, err := r.store.ListExpensesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]UserExpense, 0, len(expenses))
	for _, e := range expenses {
		share, _ := e.ShareOf(userID)
		out = append(out, UserExpense{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount,
			SplitMethod: e.SplitMethod,
			CreatedBy:   e.CreatedBy,
			CreatedAt:   e.CreatedAt,
			UserShare:   share,
		})
	}
	return out, nil
}

// GetAllExpenses lists the user's expenses with every participant's share.
func (r *Reporter) GetAllExpenses(ctx context.Context, userID string) ([]ExpenseDetail, error) {
	expenses, err := r.store.ListExpensesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ExpenseDetail, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, ExpenseDetail{
			ID:           e.ID,
			Description:  e.Description,
			Amount:       e.Amount,
			SplitMethod:  e.SplitMethod,
			CreatedBy:    e.CreatedBy,
			CreatedAt:    e.CreatedAt,
			Participants: shareViews(e.Shares),
		})
	}
	return out, nil
}

// GetBalance returns the balance view of a user, from the cache when present.
func (r *Reporter) GetBalance(ctx context.Context, userID string) ([]BalanceEntry, error) {
	cached, ok, err := r.cache.GetBalance(ctx, userID)
	if err != nil {
		r.logger.Warn("Balance cache read failed", "user_id", userID, "error", err)
	} else if ok {
		return cached, nil
	}

	// The generation must be read before the store.
	gen, err := r.cache.Generation(ctx, userID)
	cacheable := err == nil
	if err != nil {
		r.logger.Warn("Balance cache generation read failed", "user_id", userID, "error", err)
	}

	expenses, err := r.store.ListExpensesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]BalanceEntry, 0, len(expenses))
	for _, e := range expenses {
		entries = append(entries, BalanceEntry{
			ExpenseID:   e.ID,
			Description: e.Description,
			TotalAmount: e.Amount,
			Payer:       e.CreatedBy,
			Shares:      shareViews(e.Shares),
			CreatedAt:   e.CreatedAt,
		})
	}

	if cacheable {
		if err := r.cache.SetBalance(ctx, userID, gen, entries); err != nil {
			r.logger.Warn("Balance cache write failed", "user_id", userID, "error", err)
		}
	}
	return entries, nil
}

// ExportBalance flattens the user's expenses into one row per participant share.
// It fails with ErrNoExpensesFound when the user has no expenses.
func (r *Reporter) ExportBalance(ctx context.Context, userID string) ([]ExportRow, error) {
	expenses, err := r.store.ListExpensesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("%w for user %s", ErrNoExpensesFound, userID)
	}

	var rows []ExportRow
	for _, e := range expenses {
		for _, s := range e.Shares {
			rows = append(rows, ExportRow{
				ExpenseID:   e.ID,
				Description: e.Description,
				TotalAmount: e.Amount,
				Payer:       e.CreatedBy,
				UserID:      s.UserID,
				Share:       s.Share,
				CreatedAt:   e.CreatedAt,
			})
		}
	}
	return rows, nil
}

// GetBalanceSummary nets out what everyone sharing expenses with the user paid and owes.
func (r *Reporter) GetBalanceSummary(ctx context.Context, userID string) (*BalanceSummary, error) {
	expenses, err := r.store.ListExpensesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	inputs := make([]calculator.ExpenseForBalance, 0, len(expenses))
	for _, e := range expenses {
		shares := make([]calculator.Allocation, 0, len(e.Shares))
		for _, s := range e.Shares {
			shares = append(shares, calculator.Allocation{UserID: s.UserID, Share: s.Share})
		}
		inputs = append(inputs, calculator.ExpenseForBalance{
			Amount:  e.Amount,
			PayerID: e.CreatedBy,
			Shares:  shares,
		})
	}

	members, debts, err := calculator.CalculateBalances(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate balances: %w", err)
	}
	return &BalanceSummary{Members: members, Debts: debts}, nil
}

func shareViews(shares []models.ParticipantShare) []ShareView {
	out := make([]ShareView, 0, len(shares))
	for _, s := range shares {
		out = append(out, ShareView{UserID: s.UserID, Share: s.Share})
	}
	return out
}
