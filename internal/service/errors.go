package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
)

// connectError attaches the Connect code matching err.
func connectError(err error) *connect.Error {
	var unknown *ledger.UnknownParticipantError
	switch {
	case errors.As(err, &unknown), errors.Is(err, ledger.ErrNoExpensesFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ledger.ErrInvalidExpenseInput), errors.Is(err, ledger.ErrShareMismatch),
		errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrMissingField):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// rejectionReason labels a failed expense creation for metrics.
func rejectionReason(err error) string {
	var unknown *ledger.UnknownParticipantError
	switch {
	case errors.As(err, &unknown):
		return "unknown_participant"
	case errors.Is(err, ledger.ErrShareMismatch):
		return "share_mismatch"
	case errors.Is(err, ledger.ErrInvalidExpenseInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
