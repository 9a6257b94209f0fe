package models

import (
	"strings"

	"github.com/mmynk/splitledger/internal/apperrors"
)

// Role is a member's role within a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// GroupMember is one entry of a group's membership set.
type GroupMember struct {
	UserID   string `json:"userId"`
	Role     Role   `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

// Group is a named set of members that scopes expenses and settlements.
// Membership is the authority for who can be charged or credited within the
// group, and it is checked when records are written, never retroactively.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string `json:"name"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// CreatedBy is the user who created the group. Always an admin member.
	CreatedBy string `json:"createdBy"`

	// Members is the membership set, unique per user id.
	Members []GroupMember `json:"members"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`

	// LedgerVersion increases with every write that can change the group's
	// balances (expenses, settlements, membership). Cached balances are keyed by it.
	LedgerVersion int64 `json:"ledgerVersion"`
}

// IsMember reports whether userID is currently a member.
func (g *Group) IsMember(userID string) bool {
	return g.Member(userID) != nil
}

// IsAdmin reports whether userID is a member with the admin role.
func (g *Group) IsAdmin(userID string) bool {
	m := g.Member(userID)
	return m != nil && m.Role == RoleAdmin
}

// Member returns the membership entry for userID, or nil.
func (g *Group) Member(userID string) *GroupMember {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

// MemberIDs returns the member user ids in membership order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// Validate checks the group invariants: a name, unique members and a creator
// who is an admin member.
func (g *Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return apperrors.InvalidArgument("group name is required")
	}
	seen := make(map[string]bool, len(g.Members))
	for _, m := range g.Members {
		if m.UserID == "" {
			return apperrors.InvalidArgument("group member without user id")
		}
		if seen[m.UserID] {
			return apperrors.InvalidArgument("duplicate group member %s", m.UserID)
		}
		seen[m.UserID] = true
		if m.Role != RoleAdmin && m.Role != RoleMember {
			return apperrors.InvalidArgument("unknown role %q for member %s", m.Role, m.UserID)
		}
	}
	if !g.IsAdmin(g.CreatedBy) {
		return apperrors.InvalidArgument("group creator must be an admin member")
	}
	return nil
}
