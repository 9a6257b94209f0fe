package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var hundred = decimal.NewFromInt(100)

// ExpenseService implements apiconnect.ExpenseServiceHandler.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// PreviewSplits resolves splits for the editor without persisting anything.
func (s *ExpenseService) PreviewSplits(ctx context.Context, req *connect.Request[api.PreviewSplitsRequest]) (*connect.Response[api.PreviewSplitsResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	slog.Info("PreviewSplits request received",
		"amount", req.Msg.Amount.String(),
		"split_type", req.Msg.SplitType,
		"participants_count", len(req.Msg.ParticipantIDs),
	)

	overrides := calculator.Overrides(req.Msg.Overrides)
	splits, err := calculator.ResolveSplits(req.Msg.Amount, req.Msg.SplitType, req.Msg.ParticipantIDs, req.Msg.PaidByUserID, overrides)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	if req.Msg.SplitType == models.SplitPercentage {
		if err := calculator.ValidatePercentages(effectivePercentages(req.Msg.ParticipantIDs, overrides)); err != nil {
			return nil, apperrors.ToConnect(err)
		}
	}

	percentages := calculator.SplitPercentages(req.Msg.Amount, splits)
	previews := make([]api.SplitPreview, len(splits))
	for i, split := range splits {
		previews[i] = api.SplitPreview{Split: split, Percentage: percentages[i]}
	}
	total := models.SumSplits(splits)

	return connect.NewResponse(&api.PreviewSplitsResponse{
		Splits:   previews,
		Total:    total,
		Residual: req.Msg.Amount.Sub(total),
	}), nil
}

// effectivePercentages fills in the even default for participants without an
// override.
func effectivePercentages(participants []string, overrides calculator.Overrides) calculator.Overrides {
	if len(participants) == 0 {
		return calculator.Overrides{}
	}
	even := hundred.Div(decimal.NewFromInt(int64(len(participants))))
	pcts := make(calculator.Overrides, len(participants))
	for _, p := range participants {
		pcts[p] = even
		if v, ok := overrides[p]; ok {
			pcts[p] = v
		}
	}
	return pcts
}

// CreateExpense records an expense. Splits are either resolved from the
// participants and overrides or taken as given; either way they must add up
// to the amount within tolerance or nothing is written.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateExpense request received",
		"description", msg.Description,
		"amount", msg.Amount.String(),
		"split_type", msg.SplitType,
		"group_id", msg.GroupID,
	)

	payerID := msg.PaidByUserID
	if payerID == "" {
		payerID = userID
	}

	splits, err := expenseSplits(msg, payerID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	if err := calculator.ValidateSplitSum(msg.Amount, splits); err != nil {
		slog.Warn("CreateExpense rejected", "error", err)
		return nil, apperrors.ToConnect(err)
	}

	expense := &models.Expense{
		Description:  msg.Description,
		Amount:       msg.Amount,
		Date:         msg.Date,
		Category:     msg.Category,
		PaidByUserID: payerID,
		GroupID:      msg.GroupID,
		SplitType:    msg.SplitType,
		Splits:       splits,
		CreatedBy:    userID,
	}
	if err := expense.Validate(); err != nil {
		return nil, apperrors.ToConnect(err)
	}

	if expense.IsGroup() {
		if _, err := memberGroup(ctx, s.store, expense.GroupID, userID); err != nil {
			return nil, apperrors.ToConnect(err)
		}
	} else {
		if !expense.Involves(userID) {
			return nil, apperrors.ToConnect(apperrors.Unauthorized("individual expenses must involve the caller"))
		}
		involved := append([]string{payerID}, expense.ParticipantIDs()...)
		if _, err := requireUsers(ctx, s.store, involved); err != nil {
			return nil, apperrors.ToConnect(err)
		}
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"splits_count", len(expense.Splits),
	)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: expense}), nil
}

// expenseSplits returns the explicit splits of msg with the payer's share
// marked paid, or resolves them from the participants.
func expenseSplits(msg *api.CreateExpenseRequest, payerID string) ([]models.Split, error) {
	if len(msg.Splits) == 0 {
		return calculator.ResolveSplits(msg.Amount, msg.SplitType, msg.ParticipantIDs, payerID, calculator.Overrides(msg.Overrides))
	}
	if !msg.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	splits := make([]models.Split, len(msg.Splits))
	copy(splits, msg.Splits)
	for i := range splits {
		if splits[i].UserID == payerID {
			splits[i].Paid = true
		}
	}
	return splits, nil
}

// GetExpense retrieves an expense the caller is involved in, or any expense of
// a group the caller belongs to.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, apperrors.ToConnect(err)
	}
	if !expense.Involves(userID) {
		if !expense.IsGroup() {
			return nil, apperrors.ToConnect(apperrors.Unauthorized("expense %s does not involve the caller", expense.ID))
		}
		if _, err := memberGroup(ctx, s.store, expense.GroupID, userID); err != nil {
			return nil, apperrors.ToConnect(err)
		}
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: expense}), nil
}

// ListExpenses lists a group's expenses or the caller's individual ones.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received",
		"group_id", req.Msg.GroupID,
		"counterpart_id", req.Msg.CounterpartID,
	)

	var expenses []*models.Expense
	if req.Msg.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
			return nil, apperrors.ToConnect(err)
		}
		expenses, err = s.store.ListGroupExpenses(ctx, req.Msg.GroupID)
	} else {
		expenses, err = s.store.ListIndividualExpenses(ctx, userID)
	}
	if err != nil {
		slog.Error("ListExpenses failed", "error", err)
		return nil, apperrors.ToConnect(err)
	}

	if cp := req.Msg.CounterpartID; cp != "" {
		filtered := expenses[:0]
		for _, e := range expenses {
			if e.Involves(cp) {
				filtered = append(filtered, e)
			}
		}
		expenses = filtered
	}

	slog.Info("ListExpenses successful", "count", len(expenses))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: expenses}), nil
}

// DeleteExpense removes an expense. Only its payer or creator may delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	if !calculator.CanDeleteExpense(userID, expense) {
		return nil, apperrors.ToConnect(apperrors.Unauthorized("only the payer or creator can delete expense %s", expense.ID))
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}
