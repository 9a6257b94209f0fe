// Package service implements the splitledger.v1 Connect services.
package service

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var (
	_ apiconnect.AuthServiceHandler       = (*AuthService)(nil)
	_ apiconnect.GroupServiceHandler      = (*GroupService)(nil)
	_ apiconnect.ExpenseServiceHandler    = (*ExpenseService)(nil)
	_ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)
	_ apiconnect.BalanceServiceHandler    = (*BalanceService)(nil)
)

// callerID returns the authenticated user, or an Unauthenticated error when
// the request carries none.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// memberGroup loads the group and checks that userID is a current member.
func memberGroup(ctx context.Context, store storage.GroupStore, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, apperrors.InvalidArgument("group_id required")
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(userID) {
		return nil, apperrors.Unauthorized("user %s is not a member of group %s", userID, groupID)
	}
	return group, nil
}

// requireUsers fails with NotFound unless every id is a registered user.
func requireUsers(ctx context.Context, store storage.UserStore, ids []string) (map[string]*models.User, error) {
	users, err := store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, apperrors.NotFound("user", id)
		}
	}
	return users, nil
}

// withNames fills in display names and avatars for counterpart balances.
func withNames(ctx context.Context, store storage.UserStore, entries []calculator.CounterpartBalance) ([]calculator.CounterpartBalance, error) {
	if len(entries) == 0 {
		return entries, nil
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	users, err := store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for i := range entries {
		if u, ok := users[entries[i].UserID]; ok {
			entries[i].Name = u.DisplayName
			entries[i].ImageURL = u.ImageURL
		}
	}
	return entries, nil
}
