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

const settlementColumns = "id, amount, date, note, paid_by_user_id, received_by_user_id, group_id, created_by, created_at"

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Date == 0 {
		settlement.Date = settlement.CreatedAt
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if settlement.IsGroup() {
			if err := bumpLedgerVersion(ctx, tx, settlement.GroupID); err != nil {
				return err
			}
			parties := []string{settlement.PaidByUserID, settlement.ReceivedByUserID}
			if err := ensureMembers(ctx, tx, settlement.GroupID, parties); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO settlements ("+settlementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			settlement.ID, settlement.Amount, settlement.Date, nullString(settlement.Note),
			settlement.PaidByUserID, settlement.ReceivedByUserID, nullString(settlement.GroupID),
			settlement.CreatedBy, settlement.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
		return nil
	})
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?", settlementID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return settlement, nil
}

// ListGroupSettlements retrieves all settlements for a group, newest first.
func (s *SQLiteStore) ListGroupSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE group_id = ? ORDER BY date DESC, created_at DESC, id",
		groupID,
	)
}

// ListIndividualSettlements retrieves the non-group settlements userID paid
// or received, newest first.
func (s *SQLiteStore) ListIndividualSettlements(ctx context.Context, userID string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements
		 WHERE group_id IS NULL AND (paid_by_user_id = ? OR received_by_user_id = ?)
		 ORDER BY date DESC, created_at DESC, id`,
		userID, userID,
	)
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		// Check if settlement exists
		var groupID sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT group_id FROM settlements WHERE id = ?", settlementID).Scan(&groupID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("settlement", settlementID)
		}
		if err != nil {
			return fmt.Errorf("failed to check settlement existence: %w", err)
		}

		if groupID.Valid {
			if err := bumpLedgerVersion(ctx, tx, groupID.String); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID); err != nil {
			return fmt.Errorf("failed to delete settlement: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) querySettlements(ctx context.Context, query string, args ...any) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements := []*models.Settlement{}
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

func scanSettlement(row scanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var note, groupID sql.NullString
	err := row.Scan(
		&settlement.ID,
		&settlement.Amount,
		&settlement.Date,
		&note,
		&settlement.PaidByUserID,
		&settlement.ReceivedByUserID,
		&groupID,
		&settlement.CreatedBy,
		&settlement.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	settlement.Note = note.String
	settlement.GroupID = groupID.String
	return settlement, nil
}
