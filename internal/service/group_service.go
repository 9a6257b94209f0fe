package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// GroupService implements apiconnect.GroupServiceHandler.
type GroupService struct {
	store   storage.Store
	ledgers *LedgerLoader
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, ledgers *LedgerLoader) *GroupService {
	return &GroupService{store: store, ledgers: ledgers}
}

// CreateGroup creates a new group with the caller as its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
		"user_id", userID,
	)

	now := time.Now().Unix()
	group := &models.Group{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		CreatedBy:   userID,
		CreatedAt:   now,
		Members:     []models.GroupMember{{UserID: userID, Role: models.RoleAdmin, JoinedAt: now}},
	}
	var invited []string
	for _, id := range req.Msg.MemberIDs {
		if id == userID || group.IsMember(id) {
			continue
		}
		group.Members = append(group.Members, models.GroupMember{UserID: id, Role: models.RoleMember, JoinedAt: now})
		invited = append(invited, id)
	}
	if err := group.Validate(); err != nil {
		return nil, apperrors.ToConnect(err)
	}
	if _, err := requireUsers(ctx, s.store, invited); err != nil {
		return nil, apperrors.ToConnect(err)
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))
	return connect.NewResponse(&api.CreateGroupResponse{Group: group}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&api.GetGroupResponse{Group: group}), nil
}

// ListGroups retrieves the groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: groups}), nil
}

// AddMember adds a user to the group. Only admins may add members.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.UserID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	if !group.IsAdmin(userID) {
		return nil, apperrors.ToConnect(apperrors.Unauthorized("only group admins can add members"))
	}

	role := req.Msg.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, apperrors.ToConnect(apperrors.InvalidArgument("unknown role %q", role))
	}
	if _, err := s.store.GetUserByID(ctx, req.Msg.UserID); err != nil {
		return nil, apperrors.ToConnect(err)
	}

	member := models.GroupMember{UserID: req.Msg.UserID, Role: role, JoinedAt: time.Now().Unix()}
	if err := s.store.AddGroupMember(ctx, group.ID, member); err != nil {
		slog.Error("AddMember failed", "group_id", group.ID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	slog.Info("Member added", "group_id", group.ID, "member_id", member.UserID, "role", role)
	return connect.NewResponse(&api.AddMemberResponse{Group: updated}), nil
}

// RemoveMember drops a member from the group. Admins may remove anyone but
// the creator; members may remove themselves. The member's history stays in
// the group's ledger.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.UserID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	if req.Msg.UserID != userID && !group.IsAdmin(userID) {
		return nil, apperrors.ToConnect(apperrors.Unauthorized("only group admins can remove other members"))
	}
	if req.Msg.UserID == group.CreatedBy {
		return nil, apperrors.ToConnect(apperrors.InvalidArgument("the group creator cannot be removed"))
	}

	if err := s.store.RemoveGroupMember(ctx, group.ID, req.Msg.UserID); err != nil {
		slog.Error("RemoveMember failed", "group_id", group.ID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	slog.Info("Member removed", "group_id", group.ID, "member_id", req.Msg.UserID)
	return connect.NewResponse(&api.RemoveMemberResponse{Group: updated}), nil
}

// DeleteGroup removes a group and all of its records. Only the creator may
// delete it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	if group.CreatedBy != userID {
		return nil, apperrors.ToConnect(apperrors.Unauthorized("only the group creator can delete the group"))
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// GetGroupBalances returns the netted ledger of a group the caller belongs to.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}

	balances, cached, err := s.ledgers.Load(ctx, group)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", group.ID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	ids := make([]string, len(balances.Members))
	for i, m := range balances.Members {
		ids[i] = m.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}

	members := make([]api.GroupMemberBalance, len(balances.Members))
	for i, m := range balances.Members {
		members[i] = api.GroupMemberBalance{MemberBalance: m}
		if u, ok := users[m.UserID]; ok {
			members[i].DisplayName = u.DisplayName
			members[i].ImageURL = u.ImageURL
		}
	}

	slog.Info("GetGroupBalances successful",
		"group_id", group.ID,
		"ledger_version", group.LedgerVersion,
		"cached", cached,
	)
	return connect.NewResponse(&api.GetGroupBalancesResponse{
		GroupID:       group.ID,
		LedgerVersion: group.LedgerVersion,
		Members:       members,
		Debts:         balances.Debts(),
		Cached:        cached,
	}), nil
}
