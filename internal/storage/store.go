// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrEmailTaken is returned by CreateUser when another user already has the email.
var ErrEmailTaken = errors.New("email already taken")

// UserStore defines user persistence operations.
type UserStore interface {
	// CreateUser persists a new user. The user.ID field will be populated by the store.
	// Returns ErrEmailTaken if the email is already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email.
	// Returns nil and no error if the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns nil and no error if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns every registered user ordered by name.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// LedgerTx is the set of operations available inside an expense-creation transaction.
// Everything done through a LedgerTx is committed or rolled back together.
type LedgerTx interface {
	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// InsertExpense persists the expense row. ID and CreatedAt are generated when unset.
	InsertExpense(ctx context.Context, expense *models.Expense) error

	// InsertShare persists one participant share. ID is generated when unset.
	InsertShare(ctx context.Context, share *models.ParticipantShare) error
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger layer.
type Store interface {
	UserStore

	// RunInTx runs fn inside a single transaction. The transaction is committed
	// when fn returns nil and rolled back otherwise.
	RunInTx(ctx context.Context, fn func(tx LedgerTx) error) error

	// ListExpensesForUser returns the distinct expenses userID created or takes
	// part in, each with its full share set, ordered by creation.
	ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}
