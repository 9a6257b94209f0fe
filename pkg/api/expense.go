package api

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

type PreviewSplitsRequest struct {
	Amount         decimal.Decimal            `json:"amount"`
	SplitType      models.SplitType           `json:"splitType"`
	ParticipantIDs []string                   `json:"participantIds"`
	PaidByUserID   string                     `json:"paidByUserId"`
	Overrides      map[string]decimal.Decimal `json:"overrides,omitempty"`
}

// SplitPreview is a resolved split with its share of the total in percent.
type SplitPreview struct {
	models.Split
	Percentage decimal.Decimal `json:"percentage"`
}

type PreviewSplitsResponse struct {
	Splits []SplitPreview  `json:"splits"`
	Total  decimal.Decimal `json:"total"`

	// Residual is amount minus the sum of the splits.
	Residual decimal.Decimal `json:"residual"`
}

type CreateExpenseRequest struct {
	Description  string           `json:"description"`
	Amount       decimal.Decimal  `json:"amount"`
	Date         int64            `json:"date,omitempty"`
	Category     string           `json:"category,omitempty"`
	PaidByUserID string           `json:"paidByUserId,omitempty"`
	GroupID      string           `json:"groupId,omitempty"`
	SplitType    models.SplitType `json:"splitType"`

	// Either ParticipantIDs (with optional Overrides) or explicit Splits.
	ParticipantIDs []string                   `json:"participantIds,omitempty"`
	Overrides      map[string]decimal.Decimal `json:"overrides,omitempty"`
	Splits         []models.Split             `json:"splits,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

// ListExpensesRequest selects group expenses when GroupID is set, otherwise
// the caller's individual expenses, optionally narrowed to one counterpart.
type ListExpensesRequest struct {
	GroupID       string `json:"groupId,omitempty"`
	CounterpartID string `json:"counterpartId,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*models.Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}
