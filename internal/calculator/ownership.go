package calculator

import "github.com/mmynk/splitledger/internal/models"

// CanDeleteExpense reports whether userID may delete the expense: only its
// payer or the user who recorded it.
func CanDeleteExpense(userID string, e *models.Expense) bool {
	return userID != "" && (userID == e.PaidByUserID || userID == e.CreatedBy)
}

// CanDeleteSettlement reports whether userID may delete the settlement: only
// its payer or the user who recorded it.
func CanDeleteSettlement(userID string, s *models.Settlement) bool {
	return userID != "" && (userID == s.PaidByUserID || userID == s.CreatedBy)
}

// CanRecordSettlement reports whether userID may record the settlement: users
// record payments on their own behalf, as payer or as receiver.
func CanRecordSettlement(userID string, s *models.Settlement) bool {
	return userID != "" && s.Involves(userID)
}
