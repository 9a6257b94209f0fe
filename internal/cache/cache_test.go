package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

func sampleBalances(t *testing.T) *calculator.GroupBalances {
	t.Helper()
	members := []string{"alice", "bob"}
	splits, err := calculator.ResolveSplits(decimal.NewFromInt(100), models.SplitEqual, members, "alice", nil)
	require.NoError(t, err)
	g, err := calculator.GroupLedger(members, []*models.Expense{{
		ID: "e1", Amount: decimal.NewFromInt(100), PaidByUserID: "alice",
		GroupID: "g1", SplitType: models.SplitEqual, Splits: splits,
	}}, nil)
	require.NoError(t, err)
	return g
}

func TestKey(t *testing.T) {
	assert.Equal(t, "splitledger:group-balances:g1:v3", Key("g1", 3))
	assert.NotEqual(t, Key("g1", 3), Key("g1", 4))
}

func TestRedisCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)

	mock.ExpectGet(Key("g1", 1)).RedisNil()

	got, ok, err := c.GetGroupBalances(context.Background(), "g1", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_SetThenGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)
	balances := sampleBalances(t)

	data, err := json.Marshal(balances)
	require.NoError(t, err)

	mock.ExpectSet(Key("g1", 2), data, time.Minute).SetVal("OK")
	mock.ExpectGet(Key("g1", 2)).SetVal(string(data))

	ctx := context.Background()
	require.NoError(t, c.SetGroupBalances(ctx, "g1", 2, balances))

	got, ok, err := c.GetGroupBalances(ctx, "g1", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Owed("bob", "alice").Equal(decimal.NewFromInt(50)))
	require.NotNil(t, got.Member("alice"))
	assert.True(t, got.Member("alice").TotalBalance.Equal(decimal.NewFromInt(50)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)
	ctx := context.Background()

	mock.ExpectGet(Key("g1", 1)).SetErr(errors.New("connection refused"))
	_, _, err := c.GetGroupBalances(ctx, "g1", 1)
	assert.ErrorContains(t, err, "connection refused")

	mock.ExpectGet(Key("g1", 1)).SetVal("not json")
	_, ok, err := c.GetGroupBalances(ctx, "g1", 1)
	assert.Error(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNop(t *testing.T) {
	var c BalanceCache = Nop{}
	ctx := context.Background()

	require.NoError(t, c.SetGroupBalances(ctx, "g1", 1, sampleBalances(t)))
	got, ok, err := c.GetGroupBalances(ctx, "g1", 1)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}
