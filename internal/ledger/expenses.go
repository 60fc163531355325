// Package ledger implements expense creation and the balance reports built on
// top of the ledger store.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// shareTolerance is the largest accepted gap between an amount and the sum of its shares.
var shareTolerance = decimal.New(1, -2)

// CreateExpenseRequest carries everything needed to record an expense.
type CreateExpenseRequest struct {
	CreatorID   string
	Description string
	Amount      float64
	SplitMethod models.SplitMethod
	// Participants may omit the creator; the creator is appended with no value.
	Participants []calculator.ParticipantInput
}

// ExpenseService records expenses and their participant shares.
type ExpenseService struct {
	store  storage.Store
	cache  BalanceCache
	logger *slog.Logger
}

// NewExpenseService creates an expense service. cache may be nil.
func NewExpenseService(store storage.Store, cache BalanceCache, logger *slog.Logger) *ExpenseService {
	if cache == nil {
		cache = nopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseService{store: store, cache: cache, logger: logger}
}

// CreateExpense validates the request, computes every participant's share and
// persists the expense with its shares in one transaction. Nothing is written
// when any step fails.
func (s *ExpenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*models.Expense, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	inputs := withCreator(req.CreatorID, req.Participants)
	participantIDs := make([]string, len(inputs))
	for i, in := range inputs {
		participantIDs[i] = in.UserID
	}

	split, err := calculator.NewSplit(req.SplitMethod, inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpenseInput, err)
	}

	expense := &models.Expense{
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		SplitMethod: req.SplitMethod,
		CreatedBy:   req.CreatorID,
	}

	err = s.store.RunInTx(ctx, func(tx storage.LedgerTx) error {
		users, err := tx.GetUsersByIDs(ctx, participantIDs)
		if err != nil {
			return err
		}
		for _, id := range participantIDs {
			if _, ok := users[id]; !ok {
				return &UnknownParticipantError{UserID: id}
			}
		}

		allocations, err := calculator.Allocate(req.Amount, split, participantIDs)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidExpenseInput, err)
		}
		if err := checkShareSum(req.Amount, allocations); err != nil {
			return err
		}

		if err := tx.InsertExpense(ctx, expense); err != nil {
			return err
		}
		for _, a := range allocations {
			share := models.ParticipantShare{ExpenseID: expense.ID, UserID: a.UserID, Share: a.Share}
			if err := tx.InsertShare(ctx, &share); err != nil {
				return err
			}
			expense.Shares = append(expense.Shares, share)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("CreateExpense rejected",
			"creator_id", req.CreatorID,
			"split_method", req.SplitMethod,
			"error", err,
		)
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, participantIDs...); err != nil {
		s.logger.Warn("Failed to invalidate balance cache", "expense_id", expense.ID, "error", err)
	}

	s.logger.Info("Expense created",
		"expense_id", expense.ID,
		"creator_id", expense.CreatedBy,
		"amount", expense.Amount,
		"split_method", expense.SplitMethod,
		"participants", len(expense.Shares),
	)
	return expense, nil
}

func validateRequest(req CreateExpenseRequest) error {
	if req.CreatorID == "" {
		return invalidInput("creator is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return invalidInput("description is required")
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return invalidInput("amount must be positive")
	}
	if !req.SplitMethod.Valid() {
		return invalidInput("unknown split method %q", req.SplitMethod)
	}

	seen := make(map[string]bool, len(req.Participants))
	for _, p := range req.Participants {
		if p.UserID == "" {
			return invalidInput("participant user_id is required")
		}
		if seen[p.UserID] {
			return invalidInput("participant %s listed more than once", p.UserID)
		}
		seen[p.UserID] = true

		if p.Value != nil && (*p.Value < 0 || math.IsNaN(*p.Value) || math.IsInf(*p.Value, 0)) {
			return invalidInput("share for participant %s must be a non-negative number", p.UserID)
		}
	}
	return nil
}

// withCreator returns the participants with the creator appended when absent.
// The creator is added before any default share is computed, so defaults
// always divide by the final participant count.
func withCreator(creatorID string, participants []calculator.ParticipantInput) []calculator.ParticipantInput {
	for _, p := range participants {
		if p.UserID == creatorID {
			return participants
		}
	}

	out := make([]calculator.ParticipantInput, 0, len(participants)+1)
	out = append(out, participants...)
	return append(out, calculator.ParticipantInput{UserID: creatorID})
}

// checkShareSum fails with ErrShareMismatch when the shares stray from amount
// by more than shareTolerance.
func checkShareSum(amount float64, allocations []calculator.Allocation) error {
	sum := decimal.Zero
	for _, a := range allocations {
		sum = sum.Add(decimal.NewFromFloat(a.Share))
	}

	total := decimal.NewFromFloat(amount)
	if sum.Sub(total).Abs().GreaterThan(shareTolerance) {
		return fmt.Errorf("%w: shares sum to %s, expected %s",
			ErrShareMismatch, sum.StringFixed(2), total.StringFixed(2))
	}
	return nil
}
