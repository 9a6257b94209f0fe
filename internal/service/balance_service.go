package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// BalanceService implements apiconnect.BalanceServiceHandler. Every query
// recomputes from the stored records; only group ledgers are cached.
type BalanceService struct {
	store   storage.Store
	ledgers *LedgerLoader
	metrics *metrics.Metrics
}

// NewBalanceService creates a new BalanceService. m may be nil.
func NewBalanceService(store storage.Store, ledgers *LedgerLoader, m *metrics.Metrics) *BalanceService {
	return &BalanceService{store: store, ledgers: ledgers, metrics: m}
}

// GetPairwiseBalance returns the caller's individual balance against one user.
func (s *BalanceService) GetPairwiseBalance(ctx context.Context, req *connect.Request[api.GetPairwiseBalanceRequest]) (*connect.Response[api.GetPairwiseBalanceResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	counterpartID := req.Msg.CounterpartID
	slog.Info("GetPairwiseBalance request received", "user_id", userID, "counterpart_id", counterpartID)

	if counterpartID == "" {
		return nil, apperrors.ToConnect(apperrors.InvalidArgument("counterpart_id required"))
	}
	if counterpartID == userID {
		return nil, apperrors.ToConnect(apperrors.ErrSelfReference)
	}
	if _, err := s.store.GetUserByID(ctx, counterpartID); err != nil {
		return nil, apperrors.ToConnect(err)
	}

	start := time.Now()
	expenses, err := s.store.ListIndividualExpenses(ctx, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	settlements, err := s.store.ListIndividualSettlements(ctx, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}

	balance, err := calculator.PairwiseBalance(userID, counterpartID, expenses, settlements)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	s.metrics.ObserveBalance(metrics.ViewPairwise, start)

	return connect.NewResponse(&api.GetPairwiseBalanceResponse{
		CounterpartID: counterpartID,
		Balance:       balance,
	}), nil
}

// GetBalanceSummary aggregates the caller's individual balances.
func (s *BalanceService) GetBalanceSummary(ctx context.Context, req *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetBalanceSummary request received", "user_id", userID)

	start := time.Now()
	entries, err := s.individualBalances(ctx, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	summary := calculator.AggregateBalances(entries)
	s.metrics.ObserveBalance(metrics.ViewAggregate, start)

	slog.Info("GetBalanceSummary successful",
		"user_id", userID,
		"you_owe", summary.YouOwe.StringFixed(2),
		"you_are_owed", summary.YouAreOwed.StringFixed(2),
	)
	return connect.NewResponse(&api.GetBalanceSummaryResponse{Summary: summary}), nil
}

// GetAdvancedBreakdown reports the caller's individual balances with gross flows.
func (s *BalanceService) GetAdvancedBreakdown(ctx context.Context, req *connect.Request[api.GetAdvancedBreakdownRequest]) (*connect.Response[api.GetAdvancedBreakdownResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetAdvancedBreakdown request received", "user_id", userID)

	start := time.Now()
	entries, err := s.individualBalances(ctx, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	breakdown := calculator.AdvancedBreakdown(entries)
	s.metrics.ObserveBalance(metrics.ViewAdvanced, start)

	return connect.NewResponse(&api.GetAdvancedBreakdownResponse{Breakdown: breakdown}), nil
}

// GetTotalBalances merges the caller's individual balances with their
// position in every group they belong to or have history in.
func (s *BalanceService) GetTotalBalances(ctx context.Context, req *connect.Request[api.GetTotalBalancesRequest]) (*connect.Response[api.GetTotalBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetTotalBalances request received", "user_id", userID)

	start := time.Now()
	expenses, err := s.store.ListIndividualExpenses(ctx, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	settlements, err := s.store.ListIndividualSettlements(ctx, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	individual, err := calculator.CounterpartBalances(userID, expenses, settlements)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}

	// Groups the caller left still count while their history is there.
	groups, err := s.store.ListGroupsWithHistory(ctx, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	ledgers := make([]*calculator.GroupBalances, 0, len(groups))
	for _, g := range groups {
		balances, _, err := s.ledgers.Load(ctx, g)
		if err != nil {
			slog.Error("GetTotalBalances failed", "group_id", g.ID, "error", err)
			return nil, apperrors.ToConnect(err)
		}
		ledgers = append(ledgers, balances)
	}

	totals, err := withNames(ctx, s.store, calculator.TotalBalances(userID, individual, ledgers))
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	summary := calculator.AggregateBalances(totals)
	s.metrics.ObserveBalance(metrics.ViewTotal, start)

	slog.Info("GetTotalBalances successful",
		"user_id", userID,
		"groups_count", len(groups),
		"counterparts_count", len(totals),
	)
	return connect.NewResponse(&api.GetTotalBalancesResponse{
		Counterparts: totals,
		Summary:      summary,
	}), nil
}

func (s *BalanceService) individualBalances(ctx context.Context, userID string) ([]calculator.CounterpartBalance, error) {
	expenses, err := s.store.ListIndividualExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListIndividualSettlements(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := calculator.CounterpartBalances(userID, expenses, settlements)
	if err != nil {
		return nil, err
	}
	return withNames(ctx, s.store, entries)
}
