package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

const expenseColumns = "id, description, amount, date, category, paid_by_user_id, group_id, split_type, created_by, created_at"

// CreateExpense persists a new expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if expense.IsGroup() {
			if err := bumpLedgerVersion(ctx, tx, expense.GroupID); err != nil {
				return err
			}
			involved := append([]string{expense.PaidByUserID}, expense.ParticipantIDs()...)
			if err := ensureMembers(ctx, tx, expense.GroupID, involved); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			expense.ID, expense.Description, expense.Amount, expense.Date, expense.Category,
			expense.PaidByUserID, nullString(expense.GroupID), string(expense.SplitType),
			expense.CreatedBy, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for i, split := range expense.Splits {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO expense_splits (expense_id, user_id, amount, paid, position) VALUES (?, ?, ?, ?, ?)",
				expense.ID, split.UserID, split.Amount, split.Paid, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert split for %s: %w", split.UserID, err)
			}
		}
		return nil
	})
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplits(ctx, []*models.Expense{expense}); err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense and its splits.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var groupID sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT group_id FROM expenses WHERE id = ?", expenseID).Scan(&groupID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("expense", expenseID)
		}
		if err != nil {
			return fmt.Errorf("failed to check expense existence: %w", err)
		}

		if groupID.Valid {
			if err := bumpLedgerVersion(ctx, tx, groupID.String); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return nil
	})
}

// ListGroupExpenses retrieves all expenses of a group, newest first.
func (s *SQLiteStore) ListGroupExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY date DESC, created_at DESC, id",
		groupID,
	)
}

// ListIndividualExpenses retrieves the non-group expenses userID paid or is
// split into, newest first.
func (s *SQLiteStore) ListIndividualExpenses(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE group_id IS NULL
		   AND (paid_by_user_id = ? OR id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?))
		 ORDER BY date DESC, created_at DESC, id`,
		userID, userID,
	)
}

func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := []*models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.loadSplits(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// loadSplits fills in the splits of expenses with a single query.
func (s *SQLiteStore) loadSplits(ctx context.Context, expenses []*models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	byID := make(map[string]*models.Expense, len(expenses))
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		ids[i] = e.ID
		e.Splits = []models.Split{}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, user_id, amount, paid FROM expense_splits WHERE expense_id IN (?"+
			repeatPlaceholder(len(ids)-1)+") ORDER BY expense_id, position",
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var split models.Split
		if err := rows.Scan(&expenseID, &split.UserID, &split.Amount, &split.Paid); err != nil {
			return fmt.Errorf("failed to scan expense split: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var groupID sql.NullString
	err := row.Scan(
		&expense.ID,
		&expense.Description,
		&expense.Amount,
		&expense.Date,
		&expense.Category,
		&expense.PaidByUserID,
		&groupID,
		&expense.SplitType,
		&expense.CreatedBy,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.GroupID = groupID.String
	return expense, nil
}
