package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/splitledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

// individualExpense builds a non-group expense split equally among participants.
func individualExpense(t *testing.T, payer, amount string, participants ...string) *models.Expense {
	t.Helper()
	return groupExpense(t, "", payer, amount, participants...)
}

func groupExpense(t *testing.T, groupID, payer, amount string, participants ...string) *models.Expense {
	t.Helper()
	splits, err := ResolveSplits(dec(amount), models.SplitEqual, participants, payer, nil)
	if err != nil {
		t.Fatalf("ResolveSplits: %v", err)
	}
	return &models.Expense{
		ID:           "e-" + payer + "-" + amount,
		Description:  "test",
		Amount:       dec(amount),
		PaidByUserID: payer,
		GroupID:      groupID,
		SplitType:    models.SplitEqual,
		Splits:       splits,
		CreatedBy:    payer,
	}
}

func settlement(groupID, from, to, amount string) *models.Settlement {
	return &models.Settlement{
		ID:               "s-" + from + "-" + to + "-" + amount,
		Amount:           dec(amount),
		PaidByUserID:     from,
		ReceivedByUserID: to,
		GroupID:          groupID,
		CreatedBy:        from,
	}
}
