package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

// ExpenseService implements the ExpenseService RPC interface.
type ExpenseService struct {
	expenses *ledger.ExpenseService
	reporter *ledger.Reporter
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewExpenseService creates the expense RPC service.
func NewExpenseService(expenses *ledger.ExpenseService, reporter *ledger.Reporter, m *metrics.Metrics, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		reporter: reporter,
		metrics:  m,
		logger:   logger,
	}
}

// callerID returns the authenticated user, or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// CreateExpense records an expense paid by the caller.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateExpense request received",
		"user_id", userID,
		"amount", req.Msg.Amount,
		"split_method", req.Msg.SplitMethod,
		"participants", len(req.Msg.Participants),
	)

	participants := make([]calculator.ParticipantInput, len(req.Msg.Participants))
	for i, p := range req.Msg.Participants {
		participants[i] = calculator.ParticipantInput{UserID: p.UserID, Value: p.Share}
	}

	expense, err := s.expenses.CreateExpense(ctx, ledger.CreateExpenseRequest{
		CreatorID:    userID,
		Description:  req.Msg.Description,
		Amount:       req.Msg.Amount,
		SplitMethod:  models.SplitMethod(strings.ToLower(strings.TrimSpace(req.Msg.SplitMethod))),
		Participants: participants,
	})
	if err != nil {
		s.metrics.ExpenseRejected(rejectionReason(err))
		return nil, connectError(err)
	}
	s.metrics.ExpenseCreated(string(expense.SplitMethod))

	shares := make([]api.Share, len(expense.Shares))
	for i, sh := range expense.Shares {
		shares[i] = api.Share{UserID: sh.UserID, Share: sh.Share}
	}
	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: &api.Expense{
			ID:           expense.ID,
			Description:  expense.Description,
			Amount:       expense.Amount,
			SplitMethod:  string(expense.SplitMethod),
			CreatedBy:    expense.CreatedBy,
			CreatedAt:    expense.CreatedAt,
			Participants: shares,
		},
	}), nil
}

// GetUserExpenses lists the caller's expenses with the caller's share of each.
func (s *ExpenseService) GetUserExpenses(ctx context.Context, req *connect.Request[api.GetUserExpensesRequest]) (*connect.Response[api.GetUserExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("GetUserExpenses request received", "user_id", userID)

	expenses, err := s.reporter.GetUserExpenses(ctx, userID)
	if err != nil {
		s.logger.Error("GetUserExpenses failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.UserExpense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, &api.UserExpense{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount,
			SplitMethod: string(e.SplitMethod),
			CreatedBy:   e.CreatedBy,
			CreatedAt:   e.CreatedAt,
			UserShare:   e.UserShare,
		})
	}
	return connect.NewResponse(&api.GetUserExpensesResponse{Expenses: out}), nil
}

// GetAllExpenses lists the caller's expenses with every participant's share.
func (s *ExpenseService) GetAllExpenses(ctx context.Context, req *connect.Request[api.GetAllExpensesRequest]) (*connect.Response[api.GetAllExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("GetAllExpenses request received", "user_id", userID)

	expenses, err := s.reporter.GetAllExpenses(ctx, userID)
	if err != nil {
		s.logger.Error("GetAllExpenses failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, &api.Expense{
			ID:           e.ID,
			Description:  e.Description,
			Amount:       e.Amount,
			SplitMethod:  string(e.SplitMethod),
			CreatedBy:    e.CreatedBy,
			CreatedAt:    e.CreatedAt,
			Participants: toAPIShares(e.Participants),
		})
	}
	return connect.NewResponse(&api.GetAllExpensesResponse{Expenses: out}), nil
}

func toAPIShares(shares []ledger.ShareView) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{UserID: s.UserID, Share: s.Share}
	}
	return out
}
