package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func (e *testEnv) createGroup(t *testing.T, owner testUser, name string, members ...testUser) *models.Group {
	t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	resp, err := e.groups.CreateGroup(context.Background(), authed(owner, &api.CreateGroupRequest{Name: name, MemberIDs: ids}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func (e *testEnv) groupBalances(t *testing.T, viewer testUser, groupID string) *api.GetGroupBalancesResponse {
	t.Helper()
	resp, err := e.groups.GetGroupBalances(context.Background(), authed(viewer, &api.GetGroupBalancesRequest{GroupID: groupID}))
	require.NoError(t, err)
	return resp.Msg
}

func debtsByPair(debts []calculator.Debt) map[[2]string]string {
	out := make(map[[2]string]string, len(debts))
	for _, d := range debts {
		out[[2]string{d.From, d.To}] = d.Amount.StringFixed(2)
	}
	return out
}

func memberByID(members []api.GroupMemberBalance, id string) *api.GroupMemberBalance {
	for i := range members {
		if members[i].UserID == id {
			return &members[i]
		}
	}
	return nil
}

func TestGroupService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")

	group := env.createGroup(t, alice, "Roommates", bob, alice)
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, alice.ID, group.CreatedBy)
	require.Len(t, group.Members, 2)
	assert.True(t, group.IsAdmin(alice.ID))
	assert.True(t, group.IsMember(bob.ID))
	assert.False(t, group.IsAdmin(bob.ID))

	list, err := env.groups.ListGroups(ctx, authed(bob, &api.ListGroupsRequest{}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Groups, 1)
	assert.Equal(t, "Roommates", list.Msg.Groups[0].Name)

	_, err = env.groups.CreateGroup(ctx, authed(alice, &api.CreateGroupRequest{Name: " "}))
	requireCode(t, connect.CodeInvalidArgument, err)

	_, err = env.groups.CreateGroup(ctx, authed(alice, &api.CreateGroupRequest{Name: "Ghosts", MemberIDs: []string{"no-such-user"}}))
	requireCode(t, connect.CodeNotFound, err)
}

func TestGroupService_ThreeMemberLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	carol := env.register(t, "Carol")
	group := env.createGroup(t, alice, "Trip", bob, carol)
	everyone := []string{alice.ID, bob.ID, carol.ID}

	env.createExpense(t, alice, &api.CreateExpenseRequest{
		Description: "Cabin", Amount: dec("90"), GroupID: group.ID,
		SplitType: models.SplitEqual, ParticipantIDs: everyone,
	})
	env.createExpense(t, bob, &api.CreateExpenseRequest{
		Description: "Groceries", Amount: dec("30"), GroupID: group.ID,
		SplitType: models.SplitEqual, ParticipantIDs: everyone,
	})

	balances := env.groupBalances(t, alice, group.ID)
	assert.False(t, balances.Cached)
	assert.Equal(t, map[[2]string]string{
		{bob.ID, alice.ID}:   "20.00",
		{carol.ID, alice.ID}: "30.00",
		{carol.ID, bob.ID}:   "10.00",
	}, debtsByPair(balances.Debts))

	a := memberByID(balances.Members, alice.ID)
	require.NotNil(t, a)
	assert.Equal(t, "Alice", a.DisplayName)
	assertDecimal(t, "50", a.TotalBalance)
	assert.Len(t, a.OwedBy, 2)
	assert.Empty(t, a.Owes)
	assertDecimal(t, "-10", memberByID(balances.Members, bob.ID).TotalBalance)
	assertDecimal(t, "-40", memberByID(balances.Members, carol.ID).TotalBalance)

	again := env.groupBalances(t, bob, group.ID)
	assert.True(t, again.Cached)
	assert.Equal(t, balances.LedgerVersion, again.LedgerVersion)
	assert.Equal(t, 1, env.cache.hits)
	assert.Equal(t, debtsByPair(balances.Debts), debtsByPair(again.Debts))

	_, err := env.settlements.CreateSettlement(ctx, authed(carol, &api.CreateSettlementRequest{
		Amount: dec("30"), PaidByUserID: carol.ID, ReceivedByUserID: alice.ID, GroupID: group.ID,
	}))
	require.NoError(t, err)

	settled := env.groupBalances(t, carol, group.ID)
	assert.False(t, settled.Cached)
	assert.Greater(t, settled.LedgerVersion, balances.LedgerVersion)
	assert.Equal(t, map[[2]string]string{
		{bob.ID, alice.ID}: "20.00",
		{carol.ID, bob.ID}: "10.00",
	}, debtsByPair(settled.Debts))
	assertDecimal(t, "20", memberByID(settled.Members, alice.ID).TotalBalance)
	assertDecimal(t, "-10", memberByID(settled.Members, carol.ID).TotalBalance)

	// Group records never leak into individual balances.
	assertDecimal(t, "0", env.pairwise(t, alice, bob.ID))
}

func TestGroupService_Membership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	dave := env.register(t, "Dave")
	group := env.createGroup(t, alice, "Flat", bob)

	t.Run("outsiders are denied", func(t *testing.T) {
		_, err := env.groups.GetGroup(ctx, authed(dave, &api.GetGroupRequest{GroupID: group.ID}))
		requireCode(t, connect.CodePermissionDenied, err)
		_, err = env.groups.GetGroupBalances(ctx, authed(dave, &api.GetGroupBalancesRequest{GroupID: group.ID}))
		requireCode(t, connect.CodePermissionDenied, err)
		_, err = env.expenses.ListExpenses(ctx, authed(dave, &api.ListExpensesRequest{GroupID: group.ID}))
		requireCode(t, connect.CodePermissionDenied, err)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := env.groups.GetGroup(ctx, authed(alice, &api.GetGroupRequest{GroupID: "no-such-group"}))
		requireCode(t, connect.CodeNotFound, err)
	})

	t.Run("non-member participant", func(t *testing.T) {
		_, err := env.expenses.CreateExpense(ctx, authed(alice, &api.CreateExpenseRequest{
			Description: "Rent", Amount: dec("90"), GroupID: group.ID,
			SplitType: models.SplitEqual, ParticipantIDs: []string{alice.ID, bob.ID, dave.ID},
		}))
		requireCode(t, connect.CodeInvalidArgument, err)

		list, err := env.expenses.ListExpenses(ctx, authed(alice, &api.ListExpensesRequest{GroupID: group.ID}))
		require.NoError(t, err)
		assert.Empty(t, list.Msg.Expenses)
	})

	t.Run("only admins add members", func(t *testing.T) {
		_, err := env.groups.AddMember(ctx, authed(bob, &api.AddMemberRequest{GroupID: group.ID, UserID: dave.ID}))
		requireCode(t, connect.CodePermissionDenied, err)

		resp, err := env.groups.AddMember(ctx, authed(alice, &api.AddMemberRequest{GroupID: group.ID, UserID: dave.ID}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Group.Members, 3)
		assert.Greater(t, resp.Msg.Group.LedgerVersion, group.LedgerVersion)

		_, err = env.groups.AddMember(ctx, authed(alice, &api.AddMemberRequest{GroupID: group.ID, UserID: dave.ID}))
		requireCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("remove members", func(t *testing.T) {
		_, err := env.groups.RemoveMember(ctx, authed(bob, &api.RemoveMemberRequest{GroupID: group.ID, UserID: dave.ID}))
		requireCode(t, connect.CodePermissionDenied, err)

		_, err = env.groups.RemoveMember(ctx, authed(alice, &api.RemoveMemberRequest{GroupID: group.ID, UserID: alice.ID}))
		requireCode(t, connect.CodeInvalidArgument, err)

		resp, err := env.groups.RemoveMember(ctx, authed(dave, &api.RemoveMemberRequest{GroupID: group.ID, UserID: dave.ID}))
		require.NoError(t, err)
		assert.False(t, resp.Msg.Group.IsMember(dave.ID))
	})

	t.Run("only the creator deletes", func(t *testing.T) {
		_, err := env.groups.DeleteGroup(ctx, authed(bob, &api.DeleteGroupRequest{GroupID: group.ID}))
		requireCode(t, connect.CodePermissionDenied, err)

		_, err = env.groups.DeleteGroup(ctx, authed(alice, &api.DeleteGroupRequest{GroupID: group.ID}))
		require.NoError(t, err)

		_, err = env.groups.GetGroup(ctx, authed(alice, &api.GetGroupRequest{GroupID: group.ID}))
		requireCode(t, connect.CodeNotFound, err)

		list, err := env.groups.ListGroups(ctx, authed(bob, &api.ListGroupsRequest{}))
		require.NoError(t, err)
		assert.Empty(t, list.Msg.Groups)
	})
}

func TestGroupService_FormerMemberKeepsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	group := env.createGroup(t, alice, "Band", bob)

	env.createExpense(t, alice, &api.CreateExpenseRequest{
		Description: "Studio", Amount: dec("40"), GroupID: group.ID,
		SplitType: models.SplitEqual, ParticipantIDs: []string{alice.ID, bob.ID},
	})

	_, err := env.groups.RemoveMember(ctx, authed(bob, &api.RemoveMemberRequest{GroupID: group.ID, UserID: bob.ID}))
	require.NoError(t, err)

	balances := env.groupBalances(t, alice, group.ID)
	b := memberByID(balances.Members, bob.ID)
	require.NotNil(t, b)
	assert.True(t, b.Former)
	assert.Equal(t, "Bob", b.DisplayName)
	assertDecimal(t, "-20", b.TotalBalance)
	assert.Equal(t, map[[2]string]string{{bob.ID, alice.ID}: "20.00"}, debtsByPair(balances.Debts))
}
