package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

// Overrides carries caller-edited values per participant: percentages for
// percentage splits, amounts for exact splits. Equal splits ignore them.
type Overrides map[string]decimal.Decimal

// ResolveSplits converts an expense amount into one split per participant.
//
//   - equal: every participant gets amount / n.
//   - percentage: participant i gets amount * pct_i / 100, pct_i defaulting to 100 / n.
//   - exact: participant i gets the override amount, defaulting to amount / n.
//
// Shares are rounded to cents and no rounding remainder is redistributed, so
// the caller must still run ValidateSplitSum before persisting. Percentages are
// used as given, never normalized. The payer's own split is marked paid.
func ResolveSplits(amount decimal.Decimal, splitType models.SplitType, participants []string, payerID string, overrides Overrides) ([]models.Split, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if len(participants) == 0 {
		return nil, apperrors.ErrNoParticipants
	}
	if !splitType.Valid() {
		return nil, apperrors.InvalidArgument("unknown split type %q", splitType)
	}

	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p == "" {
			return nil, apperrors.InvalidArgument("empty participant id")
		}
		if seen[p] {
			return nil, apperrors.InvalidArgument("duplicate participant %s", p)
		}
		seen[p] = true
	}
	if splitType != models.SplitEqual {
		for id, v := range overrides {
			if !seen[id] {
				return nil, apperrors.InvalidArgument("override for non-participant %s", id)
			}
			if v.IsNegative() {
				return nil, apperrors.InvalidArgument("negative override for %s", id)
			}
		}
	}

	n := decimal.NewFromInt(int64(len(participants)))
	evenShare := amount.Div(n)
	evenPercentage := hundred.Div(n)

	splits := make([]models.Split, len(participants))
	for i, p := range participants {
		share := evenShare
		switch splitType {
		case models.SplitPercentage:
			pct := evenPercentage
			if v, ok := overrides[p]; ok {
				pct = v
			}
			share = amount.Mul(pct).Div(hundred)
		case models.SplitExact:
			if v, ok := overrides[p]; ok {
				share = v
			}
		}
		splits[i] = models.Split{
			UserID: p,
			Amount: roundCents(share),
			Paid:   p == payerID,
		}
	}
	return splits, nil
}

// SplitPercentages derives the display percentage of each split
// (amount_i / total * 100), rounded to two places.
func SplitPercentages(total decimal.Decimal, splits []models.Split) []decimal.Decimal {
	pcts := make([]decimal.Decimal, len(splits))
	if total.IsZero() {
		return pcts
	}
	for i, s := range splits {
		pcts[i] = s.Amount.Div(total).Mul(hundred).Round(2)
	}
	return pcts
}

// ValidatePercentages checks that percentages add up to 100 within
// PercentageTolerance.
func ValidatePercentages(percentages Overrides) error {
	total := decimal.Zero
	for _, p := range percentages {
		total = total.Add(p)
	}
	if total.Sub(hundred).Abs().GreaterThan(PercentageTolerance) {
		return apperrors.Inconsistent("percentages add up to %s, want 100", total.String())
	}
	return nil
}

// ValidateSplitSum checks |sum(splits) - amount| <= SplitSumTolerance.
// It must pass before an expense is written; a failure means no write.
func ValidateSplitSum(amount decimal.Decimal, splits []models.Split) error {
	total := models.SumSplits(splits)
	diff := total.Sub(amount).Abs()
	if diff.GreaterThan(SplitSumTolerance) {
		return fmt.Errorf("%w: splits total %s but expense amount is %s (off by %s, tolerance %s)",
			apperrors.ErrSplitSumMismatch,
			total.StringFixed(2), amount.StringFixed(2), diff.StringFixed(2), SplitSumTolerance.StringFixed(2))
	}
	return nil
}
