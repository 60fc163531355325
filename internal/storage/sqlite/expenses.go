package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// matchingExpenses selects the IDs of expenses a user created or holds a share in.
// Both placeholders take the user ID.
const matchingExpenses = `
SELECT id FROM expenses WHERE created_by = ?
UNION
SELECT expense_id FROM expense_shares WHERE user_id = ?`

func insertExpense(ctx context.Context, q querier, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, split_method, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Description, expense.Amount, string(expense.SplitMethod),
		expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	return nil
}

func insertShare(ctx context.Context, q querier, share *models.ParticipantShare) error {
	if share.ID == "" {
		share.ID = uuid.New().String()
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO expense_shares (id, expense_id, user_id, share) VALUES (?, ?, ?, ?)`,
		share.ID, share.ExpenseID, share.UserID, share.Share,
	)
	if err != nil {
		return fmt.Errorf("failed to insert share: %w", err)
	}

	return nil
}

// ListExpensesForUser retrieves every expense the user created or takes part in.
// Each expense appears once and carries all of its shares. Expenses are ordered
// by creation time, then insertion order.
func (s *SQLiteStore) ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	var expenses []*models.Expense
	err := s.readTx(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx,
			`SELECT id, description, amount, split_method, created_by, created_at
			 FROM expenses WHERE id IN (`+matchingExpenses+`)
			 ORDER BY created_at, rowid`,
			userID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to list expenses for user: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			expense, err := scanExpense(rows)
			if err != nil {
				return fmt.Errorf("failed to scan expense: %w", err)
			}
			expenses = append(expenses, expense)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate expenses: %w", err)
		}
		rows.Close()

		if len(expenses) == 0 {
			return nil
		}

		shares, err := queryShares(ctx, q,
			`SELECT id, expense_id, user_id, share FROM expense_shares
			 WHERE expense_id IN (`+matchingExpenses+`)
			 ORDER BY rowid`,
			userID, userID,
		)
		if err != nil {
			return err
		}
		for _, expense := range expenses {
			expense.Shares = shares[expense.ID]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return expenses, nil
}

// queryShares runs a share query and groups the rows by expense ID, keeping row order.
func queryShares(ctx context.Context, q querier, query string, args ...any) (map[string][]models.ParticipantShare, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	shares := make(map[string][]models.ParticipantShare)
	for rows.Next() {
		var share models.ParticipantShare
		if err := rows.Scan(&share.ID, &share.ExpenseID, &share.UserID, &share.Share); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares[share.ExpenseID] = append(shares[share.ExpenseID], share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return shares, nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var method string
	if err := row.Scan(&expense.ID, &expense.Description, &expense.Amount, &method,
		&expense.CreatedBy, &expense.CreatedAt); err != nil {
		return nil, err
	}
	expense.SplitMethod = models.SplitMethod(method)
	return expense, nil
}
