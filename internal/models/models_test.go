package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/apperrors"
)

func validExpense() *Expense {
	return &Expense{
		Description:  "Dinner",
		Amount:       decimal.NewFromInt(30),
		PaidByUserID: "alice",
		SplitType:    SplitEqual,
		Splits: []Split{
			{UserID: "alice", Amount: decimal.NewFromInt(15), Paid: true},
			{UserID: "bob", Amount: decimal.NewFromInt(15)},
		},
	}
}

func TestExpenseValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *Expense)
		kind   error
	}{
		{name: "valid", mutate: func(*Expense) {}},
		{name: "blank description", mutate: func(e *Expense) { e.Description = "  " }, kind: apperrors.ErrInvalidArgument},
		{name: "zero amount", mutate: func(e *Expense) { e.Amount = decimal.Zero }, kind: apperrors.ErrInvalidAmount},
		{name: "no payer", mutate: func(e *Expense) { e.PaidByUserID = "" }, kind: apperrors.ErrInvalidArgument},
		{name: "unknown split type", mutate: func(e *Expense) { e.SplitType = "shares" }, kind: apperrors.ErrInvalidArgument},
		{name: "no splits", mutate: func(e *Expense) { e.Splits = nil }, kind: apperrors.ErrNoParticipants},
		{name: "duplicate split", mutate: func(e *Expense) { e.Splits[1].UserID = "alice" }, kind: apperrors.ErrInvalidArgument},
		{name: "negative split", mutate: func(e *Expense) { e.Splits[1].Amount = decimal.NewFromInt(-1) }, kind: apperrors.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(e)
			err := e.Validate()
			if tt.kind == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestExpenseAccessors(t *testing.T) {
	e := validExpense()

	assert.False(t, e.IsGroup())
	assert.True(t, e.Involves("bob"))
	assert.False(t, e.Involves("carol"))
	assert.Equal(t, []string{"alice", "bob"}, e.ParticipantIDs())
	assert.True(t, SumSplits(e.Splits).Equal(decimal.NewFromInt(30)))
	assert.True(t, SumSplits(nil).IsZero())

	e.Split("bob").Paid = true
	assert.True(t, e.Splits[1].Paid)
	assert.Nil(t, e.Split("carol"))
}

func TestExpenseJSON(t *testing.T) {
	e := validExpense()
	e.Amount = decimal.RequireFromString("30.10")

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount":"30.1"`)
	assert.Contains(t, string(data), `"paidByUserId":"alice"`)
	assert.NotContains(t, string(data), "groupId")
}

func TestSettlementValidate(t *testing.T) {
	s := &Settlement{Amount: decimal.NewFromInt(5), PaidByUserID: "bob", ReceivedByUserID: "alice"}
	assert.NoError(t, s.Validate())
	assert.True(t, s.Between("alice", "bob"))
	assert.True(t, s.Involves("alice"))
	assert.False(t, s.Between("alice", "carol"))

	s.Amount = decimal.NewFromInt(-5)
	assert.ErrorIs(t, s.Validate(), apperrors.ErrInvalidAmount)

	s.Amount = decimal.NewFromInt(5)
	s.ReceivedByUserID = "bob"
	assert.ErrorIs(t, s.Validate(), apperrors.ErrSamePayerReceiver)

	s.ReceivedByUserID = ""
	assert.ErrorIs(t, s.Validate(), apperrors.ErrInvalidArgument)
}

func TestGroupValidate(t *testing.T) {
	g := &Group{
		Name:      "Roommates",
		CreatedBy: "alice",
		Members: []GroupMember{
			{UserID: "alice", Role: RoleAdmin},
			{UserID: "bob", Role: RoleMember},
		},
	}
	require.NoError(t, g.Validate())
	assert.True(t, g.IsAdmin("alice"))
	assert.False(t, g.IsAdmin("bob"))
	assert.True(t, g.IsMember("bob"))
	assert.Equal(t, []string{"alice", "bob"}, g.MemberIDs())

	g.Members[0].Role = RoleMember
	assert.ErrorIs(t, g.Validate(), apperrors.ErrInvalidArgument)

	g.Members[0].Role = RoleAdmin
	g.Members = append(g.Members, GroupMember{UserID: "bob", Role: RoleMember})
	assert.ErrorIs(t, g.Validate(), apperrors.ErrInvalidArgument)

	g.Members = g.Members[:2]
	g.Name = ""
	assert.ErrorIs(t, g.Validate(), apperrors.ErrInvalidArgument)
}

func TestNewUser(t *testing.T) {
	u := NewUser("a@example.com", "Alice", "hash")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
}
