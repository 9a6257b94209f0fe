package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

// PairwiseBalance computes the net balance between viewer and counterpart
// over their individual (non-group) expenses and settlements.
//
// Positive means the counterpart owes the viewer, negative means the viewer
// owes the counterpart. Only unpaid splits count; paid splits are settled.
func PairwiseBalance(viewerID, counterpartID string, expenses []*models.Expense, settlements []*models.Settlement) (decimal.Decimal, error) {
	if viewerID == "" || counterpartID == "" {
		return decimal.Zero, apperrors.InvalidArgument("both user ids are required")
	}
	if viewerID == counterpartID {
		return decimal.Zero, apperrors.ErrSelfReference
	}

	balance := decimal.Zero
	for _, e := range expenses {
		balance = balance.Add(expenseDelta(viewerID, counterpartID, e))
	}
	for _, s := range settlements {
		balance = balance.Add(settlementDelta(viewerID, counterpartID, s))
	}
	return balance, nil
}

// expenseDelta is the contribution of one expense to viewer's balance
// against counterpart.
func expenseDelta(viewerID, counterpartID string, e *models.Expense) decimal.Decimal {
	if e == nil || e.IsGroup() {
		return decimal.Zero
	}
	if !e.Involves(viewerID) || !e.Involves(counterpartID) {
		return decimal.Zero
	}
	switch e.PaidByUserID {
	case viewerID:
		if s := e.Split(counterpartID); s != nil && !s.Paid {
			return s.Amount
		}
	case counterpartID:
		if s := e.Split(viewerID); s != nil && !s.Paid {
			return s.Amount.Neg()
		}
	}
	return decimal.Zero
}

// settlementDelta is the contribution of one settlement to viewer's balance
// against counterpart. Paying raises the payer's balance.
func settlementDelta(viewerID, counterpartID string, s *models.Settlement) decimal.Decimal {
	if s == nil || s.IsGroup() || !s.Between(viewerID, counterpartID) {
		return decimal.Zero
	}
	if s.PaidByUserID == viewerID {
		return s.Amount
	}
	return s.Amount.Neg()
}

// CounterpartBalance is the viewer's position against one counterpart.
// Credit and Debit are gross, unsigned flows; their difference is the net.
type CounterpartBalance struct {
	UserID   string          `json:"userId"`
	Name     string          `json:"name,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Credit   decimal.Decimal `json:"credit"` // counterpart's unpaid shares of viewer's expenses, plus payments viewer made
	Debit    decimal.Decimal `json:"debit"`  // viewer's unpaid shares of counterpart's expenses, plus payments viewer received
}

// Net returns Credit - Debit. Positive means the counterpart owes the viewer.
func (c CounterpartBalance) Net() decimal.Decimal {
	return c.Credit.Sub(c.Debit)
}

// CounterpartBalances computes, in one pass, the viewer's balance against
// every user they share individual history with. For each counterpart, Net()
// equals PairwiseBalance(viewerID, counterpart). The result is ordered by
// user id.
func CounterpartBalances(viewerID string, expenses []*models.Expense, settlements []*models.Settlement) ([]CounterpartBalance, error) {
	if viewerID == "" {
		return nil, apperrors.InvalidArgument("viewer id is required")
	}

	byUser := make(map[string]*CounterpartBalance)
	entry := func(userID string) *CounterpartBalance {
		cb, ok := byUser[userID]
		if !ok {
			cb = &CounterpartBalance{UserID: userID, Credit: decimal.Zero, Debit: decimal.Zero}
			byUser[userID] = cb
		}
		return cb
	}

	for _, e := range expenses {
		if e == nil || e.IsGroup() || !e.Involves(viewerID) {
			continue
		}
		if e.PaidByUserID == viewerID {
			for _, s := range e.Splits {
				if s.UserID == viewerID {
					continue
				}
				cb := entry(s.UserID)
				if !s.Paid {
					cb.Credit = cb.Credit.Add(s.Amount)
				}
			}
			continue
		}
		cb := entry(e.PaidByUserID)
		if s := e.Split(viewerID); s != nil && !s.Paid {
			cb.Debit = cb.Debit.Add(s.Amount)
		}
	}

	for _, s := range settlements {
		if s == nil || s.IsGroup() || s.PaidByUserID == s.ReceivedByUserID {
			continue
		}
		switch viewerID {
		case s.PaidByUserID:
			cb := entry(s.ReceivedByUserID)
			cb.Credit = cb.Credit.Add(s.Amount)
		case s.ReceivedByUserID:
			cb := entry(s.PaidByUserID)
			cb.Debit = cb.Debit.Add(s.Amount)
		}
	}

	result := make([]CounterpartBalance, 0, len(byUser))
	for _, cb := range byUser {
		result = append(result, *cb)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}
