package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
)

// SplitType is the policy used to derive an expense's splits at creation time.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitExact      SplitType = "exact"
	SplitPercentage SplitType = "percentage"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitExact, SplitPercentage:
		return true
	}
	return false
}

// Split is one participant's share of an expense.
type Split struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
	// Paid marks the share as already settled. The payer's own share is
	// created paid; everyone else's starts unpaid.
	Paid bool `json:"paid"`
}

// Expense is money fronted by one user and shared through Splits.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// Description is the human-readable label (e.g., "Groceries").
	Description string `json:"description"`

	// Amount is the total paid. Non-negative.
	Amount decimal.Decimal `json:"amount"`

	// Date is the Unix timestamp of the expense.
	Date int64 `json:"date"`

	// Category is an optional classification tag.
	Category string `json:"category,omitempty"`

	// PaidByUserID is the user who fronted the money.
	PaidByUserID string `json:"paidByUserId"`

	// GroupID references the owning group. Empty for individual expenses.
	GroupID string `json:"groupId,omitempty"`

	// SplitType records how Splits were derived.
	SplitType SplitType `json:"splitType"`

	// Splits holds one entry per participant, in participant order.
	Splits []Split `json:"splits"`

	// CreatedBy is the user who recorded the expense.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"createdAt"`
}

// IsGroup reports whether the expense belongs to a group.
func (e *Expense) IsGroup() bool {
	return e.GroupID != ""
}

// Split returns the split entry for userID, or nil.
func (e *Expense) Split(userID string) *Split {
	for i := range e.Splits {
		if e.Splits[i].UserID == userID {
			return &e.Splits[i]
		}
	}
	return nil
}

// Involves reports whether userID paid the expense or has a split in it.
func (e *Expense) Involves(userID string) bool {
	return e.PaidByUserID == userID || e.Split(userID) != nil
}

// ParticipantIDs returns the split user ids in order.
func (e *Expense) ParticipantIDs() []string {
	ids := make([]string, len(e.Splits))
	for i, s := range e.Splits {
		ids[i] = s.UserID
	}
	return ids
}

// SumSplits adds up the split amounts.
func SumSplits(splits []Split) decimal.Decimal {
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	return total
}

// Validate checks the record-level invariants except the split-sum tolerance,
// which the calculator owns.
func (e *Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return apperrors.InvalidArgument("expense description is required")
	}
	if !e.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if e.PaidByUserID == "" {
		return apperrors.InvalidArgument("expense payer is required")
	}
	if !e.SplitType.Valid() {
		return apperrors.InvalidArgument("unknown split type %q", e.SplitType)
	}
	if len(e.Splits) == 0 {
		return apperrors.ErrNoParticipants
	}
	seen := make(map[string]bool, len(e.Splits))
	for _, s := range e.Splits {
		if s.UserID == "" {
			return apperrors.InvalidArgument("split without user id")
		}
		if seen[s.UserID] {
			return apperrors.InvalidArgument("duplicate split for user %s", s.UserID)
		}
		seen[s.UserID] = true
		if s.Amount.IsNegative() {
			return apperrors.InvalidArgument("negative split amount for user %s", s.UserID)
		}
	}
	return nil
}
