package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// SettlementService implements apiconnect.SettlementServiceHandler.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// CreateSettlement records a payment. The caller must be the payer or the
// receiver.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateSettlement request received",
		"amount", req.Msg.Amount.String(),
		"paid_by", req.Msg.PaidByUserID,
		"received_by", req.Msg.ReceivedByUserID,
		"group_id", req.Msg.GroupID,
	)

	settlement := &models.Settlement{
		Amount:           req.Msg.Amount,
		Date:             req.Msg.Date,
		Note:             req.Msg.Note,
		PaidByUserID:     req.Msg.PaidByUserID,
		ReceivedByUserID: req.Msg.ReceivedByUserID,
		GroupID:          req.Msg.GroupID,
		CreatedBy:        userID,
	}
	if err := settlement.Validate(); err != nil {
		return nil, apperrors.ToConnect(err)
	}
	if !calculator.CanRecordSettlement(userID, settlement) {
		return nil, apperrors.ToConnect(apperrors.Unauthorized("settlements must be recorded by the payer or the receiver"))
	}

	if settlement.IsGroup() {
		if _, err := memberGroup(ctx, s.store, settlement.GroupID, userID); err != nil {
			return nil, apperrors.ToConnect(err)
		}
	} else {
		parties := []string{settlement.PaidByUserID, settlement.ReceivedByUserID}
		if _, err := requireUsers(ctx, s.store, parties); err != nil {
			return nil, apperrors.ToConnect(err)
		}
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement failed", "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("Settlement created", "settlement_id", settlement.ID, "group_id", settlement.GroupID)
	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: settlement}), nil
}

// ListSettlements lists a group's settlements or the caller's individual ones.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListSettlements request received",
		"group_id", req.Msg.GroupID,
		"counterpart_id", req.Msg.CounterpartID,
	)

	var settlements []*models.Settlement
	if req.Msg.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
			return nil, apperrors.ToConnect(err)
		}
		settlements, err = s.store.ListGroupSettlements(ctx, req.Msg.GroupID)
	} else {
		settlements, err = s.store.ListIndividualSettlements(ctx, userID)
	}
	if err != nil {
		slog.Error("ListSettlements failed", "error", err)
		return nil, apperrors.ToConnect(err)
	}

	if cp := req.Msg.CounterpartID; cp != "" {
		filtered := settlements[:0]
		for _, st := range settlements {
			if st.Involves(cp) {
				filtered = append(filtered, st)
			}
		}
		settlements = filtered
	}

	slog.Info("ListSettlements successful", "count", len(settlements))
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: settlements}), nil
}

// DeleteSettlement removes a settlement. Only its payer or creator may delete it.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	if !calculator.CanDeleteSettlement(userID, settlement) {
		return nil, apperrors.ToConnect(apperrors.Unauthorized("only the payer or creator can delete settlement %s", settlement.ID))
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("Settlement deleted", "settlement_id", settlement.ID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}
