package api

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

type CreateSettlementRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Date             int64           `json:"date,omitempty"`
	Note             string          `json:"note,omitempty"`
	PaidByUserID     string          `json:"paidByUserId"`
	ReceivedByUserID string          `json:"receivedByUserId"`
	GroupID          string          `json:"groupId,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement *models.Settlement `json:"settlement"`
}

// ListSettlementsRequest selects group settlements when GroupID is set,
// otherwise the caller's individual settlements, optionally narrowed to one
// counterpart.
type ListSettlementsRequest struct {
	GroupID       string `json:"groupId,omitempty"`
	CounterpartID string `json:"counterpartId,omitempty"`
}

type ListSettlementsResponse struct {
	Settlements []*models.Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type DeleteSettlementResponse struct{}
