package api

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// MemberIDs are added as plain members; the caller becomes the admin.
	MemberIDs []string `json:"memberIds,omitempty"`
}

type CreateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *models.Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*models.Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID string      `json:"groupId"`
	UserID  string      `json:"userId"`
	Role    models.Role `json:"role,omitempty"`
}

type AddMemberResponse struct {
	Group *models.Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RemoveMemberResponse struct {
	Group *models.Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

// GroupMemberBalance is a member's netted position with display details.
type GroupMemberBalance struct {
	calculator.MemberBalance
	DisplayName string `json:"displayName"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type GetGroupBalancesResponse struct {
	GroupID       string               `json:"groupId"`
	LedgerVersion int64                `json:"ledgerVersion"`
	Members       []GroupMemberBalance `json:"members"`
	Debts         []calculator.Debt    `json:"debts"`
	// Cached reports whether the balances came from the cache.
	Cached bool `json:"cached"`
}
