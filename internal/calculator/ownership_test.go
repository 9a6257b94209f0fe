package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/splitledger/internal/models"
)

func TestCanDeleteExpense(t *testing.T) {
	e := &models.Expense{PaidByUserID: "alice", CreatedBy: "bob"}

	assert.True(t, CanDeleteExpense("alice", e))
	assert.True(t, CanDeleteExpense("bob", e))
	assert.False(t, CanDeleteExpense("carol", e))
	assert.False(t, CanDeleteExpense("", e))
}

func TestCanDeleteSettlement(t *testing.T) {
	s := &models.Settlement{PaidByUserID: "alice", ReceivedByUserID: "bob", CreatedBy: "alice"}

	assert.True(t, CanDeleteSettlement("alice", s))
	assert.False(t, CanDeleteSettlement("bob", s), "receiver did not record it")
	assert.False(t, CanDeleteSettlement("carol", s))
}

func TestCanRecordSettlement(t *testing.T) {
	s := &models.Settlement{PaidByUserID: "alice", ReceivedByUserID: "bob"}

	assert.True(t, CanRecordSettlement("alice", s))
	assert.True(t, CanRecordSettlement("bob", s))
	assert.False(t, CanRecordSettlement("carol", s))
}
