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

// CreateGroup persists a new group and its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO groups (id, name, description, created_by, created_at, ledger_version)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt, group.LedgerVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for i := range group.Members {
			m := &group.Members[i]
			if m.JoinedAt == 0 {
				m.JoinedAt = group.CreatedAt
			}
			if err := insertMember(ctx, tx, group.ID, *m); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroup retrieves a group by ID, including its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at, ledger_version FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt, &group.LedgerVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := s.listMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return group, nil
}

// ListGroupsForUser retrieves the groups userID is a member of, newest first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.queryGroups(ctx,
		`SELECT g.id, g.name, g.description, g.created_by, g.created_at, g.ledger_version
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.created_at DESC, g.id`,
		userID,
	)
}

// ListGroupsWithHistory retrieves the groups userID is a member of or has
// expenses or settlements in, newest first. Former members keep showing up
// until their records are gone.
func (s *SQLiteStore) ListGroupsWithHistory(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.queryGroups(ctx,
		`SELECT id, name, description, created_by, created_at, ledger_version
		 FROM groups
		 WHERE id IN (
		     SELECT group_id FROM group_members WHERE user_id = ?
		     UNION
		     SELECT group_id FROM expenses WHERE group_id IS NOT NULL AND paid_by_user_id = ?
		     UNION
		     SELECT e.group_id FROM expense_splits es
		     JOIN expenses e ON e.id = es.expense_id
		     WHERE e.group_id IS NOT NULL AND es.user_id = ?
		     UNION
		     SELECT group_id FROM settlements
		     WHERE group_id IS NOT NULL AND (paid_by_user_id = ? OR received_by_user_id = ?)
		 )
		 ORDER BY created_at DESC, id`,
		userID, userID, userID, userID, userID,
	)
}

// queryGroups runs a query selecting group rows and loads each group's members.
func (s *SQLiteStore) queryGroups(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := []*models.Group{}
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt, &group.LedgerVersion); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, group := range groups {
		members, err := s.listMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		group.Members = members
	}

	return groups, nil
}

// AddGroupMember adds a member to a group.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID string, member models.GroupMember) error {
	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := bumpLedgerVersion(ctx, tx, groupID); err != nil {
			return err
		}

		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?", groupID, member.UserID,
		).Scan(&exists)
		if err == nil {
			return apperrors.InvalidArgument("user %s is already a member of group %s", member.UserID, groupID)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check membership: %w", err)
		}

		return insertMember(ctx, tx, groupID, member)
	})
}

// RemoveGroupMember removes a member from a group. Expenses and settlements
// the member took part in are kept.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := bumpLedgerVersion(ctx, tx, groupID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			"DELETE FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove group member: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to remove group member: %w", err)
		}
		if n == 0 {
			return apperrors.NotFound("group member", userID)
		}
		return nil
	})
}

// DeleteGroup removes a group by ID. Its members, expenses and settlements
// go with it.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound("group", groupID)
	}
	return nil
}

func (s *SQLiteStore) listMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, role, joined_at FROM group_members WHERE group_id = ? ORDER BY joined_at, user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	members := []models.GroupMember{}
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return members, nil
}

func insertMember(ctx context.Context, q querier, groupID string, m models.GroupMember) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		groupID, m.UserID, string(m.Role), m.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group member %s: %w", m.UserID, err)
	}
	return nil
}
