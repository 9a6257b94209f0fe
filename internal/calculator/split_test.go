package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

func TestResolveSplits(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		splitType    models.SplitType
		participants []string
		payer        string
		overrides    Overrides
		wantAmounts  []string
		wantErr      error
	}{
		{
			name:         "equal two-person split",
			amount:       "100",
			splitType:    models.SplitEqual,
			participants: []string{"alice", "bob"},
			payer:        "alice",
			wantAmounts:  []string{"50", "50"},
		},
		{
			name:         "equal split rounds each share to cents without redistribution",
			amount:       "100",
			splitType:    models.SplitEqual,
			participants: []string{"alice", "bob", "carol"},
			payer:        "alice",
			wantAmounts:  []string{"33.33", "33.33", "33.33"},
		},
		{
			name:         "equal split ignores overrides",
			amount:       "90",
			splitType:    models.SplitEqual,
			participants: []string{"alice", "bob", "carol"},
			payer:        "bob",
			overrides:    Overrides{"alice": dec("80")},
			wantAmounts:  []string{"30", "30", "30"},
		},
		{
			name:         "percentage split",
			amount:       "200",
			splitType:    models.SplitPercentage,
			participants: []string{"alice", "bob"},
			payer:        "alice",
			overrides:    Overrides{"alice": dec("60"), "bob": dec("40")},
			wantAmounts:  []string{"120", "80"},
		},
		{
			name:         "percentage split defaults to even percentages",
			amount:       "200",
			splitType:    models.SplitPercentage,
			participants: []string{"alice", "bob", "carol", "dave"},
			payer:        "alice",
			overrides:    Overrides{"alice": dec("40")},
			wantAmounts:  []string{"80", "50", "50", "50"},
		},
		{
			name:         "percentages are not normalized",
			amount:       "100",
			splitType:    models.SplitPercentage,
			participants: []string{"alice", "bob"},
			payer:        "alice",
			overrides:    Overrides{"alice": dec("70"), "bob": dec("70")},
			wantAmounts:  []string{"70", "70"},
		},
		{
			name:         "exact split",
			amount:       "100",
			splitType:    models.SplitExact,
			participants: []string{"alice", "bob", "carol"},
			payer:        "carol",
			overrides:    Overrides{"alice": dec("12.50"), "bob": dec("37.50"), "carol": dec("50")},
			wantAmounts:  []string{"12.5", "37.5", "50"},
		},
		{
			name:         "zero amount",
			amount:       "0",
			splitType:    models.SplitEqual,
			participants: []string{"alice"},
			wantErr:      apperrors.ErrInvalidAmount,
		},
		{
			name:         "negative amount",
			amount:       "-5",
			splitType:    models.SplitEqual,
			participants: []string{"alice"},
			wantErr:      apperrors.ErrInvalidAmount,
		},
		{
			name:      "no participants",
			amount:    "10",
			splitType: models.SplitEqual,
			wantErr:   apperrors.ErrNoParticipants,
		},
		{
			name:         "duplicate participant",
			amount:       "10",
			splitType:    models.SplitEqual,
			participants: []string{"alice", "alice"},
			wantErr:      apperrors.ErrInvalidArgument,
		},
		{
			name:         "unknown split type",
			amount:       "10",
			splitType:    "shares",
			participants: []string{"alice"},
			wantErr:      apperrors.ErrInvalidArgument,
		},
		{
			name:         "override for outsider",
			amount:       "10",
			splitType:    models.SplitExact,
			participants: []string{"alice"},
			overrides:    Overrides{"mallory": dec("10")},
			wantErr:      apperrors.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := ResolveSplits(dec(tt.amount), tt.splitType, tt.participants, tt.payer, tt.overrides)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, splits)
				return
			}
			require.NoError(t, err)
			require.Len(t, splits, len(tt.wantAmounts))
			for i, s := range splits {
				assert.Equal(t, tt.participants[i], s.UserID)
				assertDecimal(t, tt.wantAmounts[i], s.Amount, "split %d", i)
				assert.Equal(t, s.UserID == tt.payer, s.Paid, "paid flag for %s", s.UserID)
			}
		})
	}
}

func TestValidateSplitSum(t *testing.T) {
	splits := func(amounts ...string) []models.Split {
		out := make([]models.Split, len(amounts))
		for i, a := range amounts {
			out[i] = models.Split{UserID: string(rune('a' + i)), Amount: dec(a)}
		}
		return out
	}

	assert.NoError(t, ValidateSplitSum(dec("100"), splits("50", "50")))
	assert.NoError(t, ValidateSplitSum(dec("100"), splits("33.33", "33.33", "33.33")))
	assert.NoError(t, ValidateSplitSum(dec("100"), splits("50", "49.90")), "0.10 is inside the tolerance")

	err := ValidateSplitSum(dec("100"), splits("50", "30"))
	assert.ErrorIs(t, err, apperrors.ErrSplitSumMismatch)
	assert.ErrorIs(t, err, apperrors.ErrInconsistent)
	assert.Contains(t, err.Error(), "80.00")

	assert.ErrorIs(t, ValidateSplitSum(dec("100"), splits("50", "49.89")), apperrors.ErrInconsistent)
}

func TestEqualSplitResidualGrowsWithParticipants(t *testing.T) {
	participants := make([]string, 30)
	for i := range participants {
		participants[i] = string(rune('A' + i))
	}
	// 10 / 30 = 0.333.. rounds to 0.33 per head, 0.10 short overall.
	splits, err := ResolveSplits(dec("10"), models.SplitEqual, participants, "A", nil)
	require.NoError(t, err)
	assert.NoError(t, ValidateSplitSum(dec("10"), splits))

	// 20 / 30 = 0.666.. rounds to 0.67 per head, 0.10 over: still accepted.
	splits, err = ResolveSplits(dec("20"), models.SplitEqual, participants, "A", nil)
	require.NoError(t, err)
	assert.NoError(t, ValidateSplitSum(dec("20"), splits))

	// 1 / 40 = 0.025 rounds up to 0.03 per head, 0.20 over: rejected.
	participants = append(participants, "a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	splits, err = ResolveSplits(dec("1"), models.SplitEqual, participants, "A", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, ValidateSplitSum(dec("1"), splits), apperrors.ErrInconsistent)
}

func TestSplitPercentages(t *testing.T) {
	splits := []models.Split{
		{UserID: "alice", Amount: dec("120")},
		{UserID: "bob", Amount: dec("80")},
	}
	pcts := SplitPercentages(dec("200"), splits)
	require.Len(t, pcts, 2)
	assertDecimal(t, "60", pcts[0])
	assertDecimal(t, "40", pcts[1])

	zero := SplitPercentages(dec("0"), splits)
	assert.True(t, zero[0].IsZero())
}

func TestValidatePercentages(t *testing.T) {
	assert.NoError(t, ValidatePercentages(Overrides{"a": dec("33.33"), "b": dec("33.33"), "c": dec("33.34")}))
	assert.NoError(t, ValidatePercentages(Overrides{"a": dec("33.33"), "b": dec("33.33"), "c": dec("33.33")}))
	assert.ErrorIs(t, ValidatePercentages(Overrides{"a": dec("60"), "b": dec("30")}), apperrors.ErrInconsistent)
}
