package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/export"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/pkg/api"
)

// BalanceService implements the BalanceService RPC interface and the CSV download.
type BalanceService struct {
	reporter *ledger.Reporter
	logger   *slog.Logger
}

// NewBalanceService creates the balance RPC service.
func NewBalanceService(reporter *ledger.Reporter, logger *slog.Logger) *BalanceService {
	return &BalanceService{reporter: reporter, logger: logger}
}

// GetBalance returns the caller's balance view.
func (s *BalanceService) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("GetBalance request received", "user_id", userID)

	entries, err := s.reporter.GetBalance(ctx, userID)
	if err != nil {
		s.logger.Error("GetBalance failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.BalanceEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &api.BalanceEntry{
			ExpenseID:   e.ExpenseID,
			Description: e.Description,
			TotalAmount: e.TotalAmount,
			Payer:       e.Payer,
			Shares:      toAPIShares(e.Shares),
			CreatedAt:   e.CreatedAt,
		})
	}
	return connect.NewResponse(&api.GetBalanceResponse{Balance: out}), nil
}

// ExportBalance returns the caller's balance as flat rows.
func (s *BalanceService) ExportBalance(ctx context.Context, req *connect.Request[api.ExportBalanceRequest]) (*connect.Response[api.ExportBalanceResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("ExportBalance request received", "user_id", userID)

	rows, err := s.reporter.ExportBalance(ctx, userID)
	if err != nil {
		return nil, connectError(err)
	}

	out := make([]*api.ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, &api.ExportRow{
			ExpenseID:   r.ExpenseID,
			Description: r.Description,
			TotalAmount: r.TotalAmount,
			Payer:       r.Payer,
			UserID:      r.UserID,
			Share:       r.Share,
			CreatedAt:   r.CreatedAt,
		})
	}
	return connect.NewResponse(&api.ExportBalanceResponse{Rows: out}), nil
}

// GetBalanceSummary returns net positions and suggested payments across the caller's expenses.
func (s *BalanceService) GetBalanceSummary(ctx context.Context, req *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("GetBalanceSummary request received", "user_id", userID)

	summary, err := s.reporter.GetBalanceSummary(ctx, userID)
	if err != nil {
		s.logger.Error("GetBalanceSummary failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	resp := &api.GetBalanceSummaryResponse{
		Members: make([]*api.MemberBalance, 0, len(summary.Members)),
		Debts:   make([]*api.Debt, 0, len(summary.Debts)),
	}
	for _, m := range summary.Members {
		resp.Members = append(resp.Members, &api.MemberBalance{
			UserID:     m.UserID,
			TotalPaid:  m.TotalPaid,
			TotalOwed:  m.TotalOwed,
			NetBalance: m.NetBalance,
		})
	}
	for _, d := range summary.Debts {
		resp.Debts = append(resp.Debts, &api.Debt{From: d.From, To: d.To, Amount: d.Amount})
	}
	return connect.NewResponse(resp), nil
}

// DownloadHandler serves the caller's balance sheet as a CSV attachment.
// It must be wrapped by middleware.RequireAuthHTTP.
func (s *BalanceService) DownloadHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			middleware.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		userID := middleware.GetUserID(r.Context())
		if userID == "" {
			middleware.WriteJSONError(w, http.StatusUnauthorized, "Please log in first")
			return
		}

		rows, err := s.reporter.ExportBalance(r.Context(), userID)
		if errors.Is(err, ledger.ErrNoExpensesFound) {
			middleware.WriteJSONError(w, http.StatusNotFound, "No expenses found for download.")
			return
		}
		if err != nil {
			s.logger.Error("Balance download failed", "user_id", userID, "error", err)
			middleware.WriteJSONError(w, http.StatusInternalServerError, "failed to export balance")
			return
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, rows); err != nil {
			s.logger.Error("Balance download failed", "user_id", userID, "error", err)
			middleware.WriteJSONError(w, http.StatusInternalServerError, "failed to export balance")
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment;filename="+export.Filename)
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)

		s.logger.Info("Balance sheet downloaded", "user_id", userID, "rows", len(rows))
	})
}
