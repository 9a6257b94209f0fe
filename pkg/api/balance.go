package api

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
)

type GetPairwiseBalanceRequest struct {
	CounterpartID string `json:"counterpartId"`
}

// GetPairwiseBalanceResponse carries the caller's individual balance against
// the counterpart. Positive means the counterpart owes the caller.
type GetPairwiseBalanceResponse struct {
	CounterpartID string          `json:"counterpartId"`
	Balance       decimal.Decimal `json:"balance"`
}

type GetBalanceSummaryRequest struct{}

type GetBalanceSummaryResponse struct {
	Summary calculator.AggregateBalance `json:"summary"`
}

type GetAdvancedBreakdownRequest struct{}

type GetAdvancedBreakdownResponse struct {
	Breakdown calculator.AdvancedBalance `json:"breakdown"`
}

type GetTotalBalancesRequest struct{}

// GetTotalBalancesResponse merges individual and group balances per
// counterpart.
type GetTotalBalancesResponse struct {
	Counterparts []calculator.CounterpartBalance `json:"counterparts"`
	Summary      calculator.AggregateBalance     `json:"summary"`
}
