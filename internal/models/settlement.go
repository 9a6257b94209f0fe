package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
)

// Settlement represents a direct payment between two users to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal `json:"amount"`

	// Date is the Unix timestamp of the payment.
	Date int64 `json:"date"`

	// Note is an optional description for the settlement.
	Note string `json:"note,omitempty"`

	// PaidByUserID is the user who paid (debtor settling up).
	PaidByUserID string `json:"paidByUserId"`

	// ReceivedByUserID is the user who received payment (creditor being paid).
	ReceivedByUserID string `json:"receivedByUserId"`

	// GroupID is the group this settlement belongs to. Empty for individual settlements.
	GroupID string `json:"groupId,omitempty"`

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"createdAt"`
}

// IsGroup reports whether the settlement belongs to a group.
func (s *Settlement) IsGroup() bool {
	return s.GroupID != ""
}

// Involves reports whether userID is the payer or the receiver.
func (s *Settlement) Involves(userID string) bool {
	return s.PaidByUserID == userID || s.ReceivedByUserID == userID
}

// Between reports whether the settlement is between a and b, in either direction.
func (s *Settlement) Between(a, b string) bool {
	return (s.PaidByUserID == a && s.ReceivedByUserID == b) ||
		(s.PaidByUserID == b && s.ReceivedByUserID == a)
}

// Validate checks the record-level invariants. Group membership is checked by
// the caller, which has the group at hand.
func (s *Settlement) Validate() error {
	if !s.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if s.PaidByUserID == "" || s.ReceivedByUserID == "" {
		return apperrors.InvalidArgument("settlement needs both a payer and a receiver")
	}
	if s.PaidByUserID == s.ReceivedByUserID {
		return apperrors.ErrSamePayerReceiver
	}
	return nil
}
