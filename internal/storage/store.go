// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Store defines the persistence operations the services need.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Lookups of missing rows return an error wrapping apperrors.ErrNotFound.
// Every write that changes a group's expenses, settlements or membership
// bumps the group's LedgerVersion in the same transaction.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs returns the users that exist, keyed by id.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup persists the group and its members. ID and CreatedAt are
	// assigned when empty.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// ListGroupsForUser returns the groups userID currently belongs to.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	// ListGroupsWithHistory returns the groups userID belongs to or still has
	// expenses or settlements in after leaving.
	ListGroupsWithHistory(ctx context.Context, userID string) ([]*models.Group, error)
	AddGroupMember(ctx context.Context, groupID string, member models.GroupMember) error
	// RemoveGroupMember drops the membership. The member's expense and
	// settlement history in the group is kept.
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
	// DeleteGroup removes the group together with its expenses and settlements.
	DeleteGroup(ctx context.Context, groupID string) error
}

// ExpenseStore persists expenses and their splits.
type ExpenseStore interface {
	// CreateExpense inserts the expense and all its splits atomically. For a
	// group expense, the payer and every split user must be current members.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
	// ListGroupExpenses returns every expense of the group, newest first.
	ListGroupExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)
	// ListIndividualExpenses returns the non-group expenses userID paid or
	// has a split in, newest first.
	ListIndividualExpenses(ctx context.Context, userID string) ([]*models.Expense, error)
}

// SettlementStore persists settlements.
type SettlementStore interface {
	// CreateSettlement inserts the settlement. For a group settlement both
	// parties must be current members.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error
	ListGroupSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error)
	// ListIndividualSettlements returns the non-group settlements userID paid
	// or received, newest first.
	ListIndividualSettlements(ctx context.Context, userID string) ([]*models.Settlement, error)
}
