package calculator

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

// OwedByEntry is money another member owes this member, after netting.
type OwedByEntry struct {
	From   string          `json:"from"`
	Amount decimal.Decimal `json:"amount"`
}

// OwesEntry is money this member owes another member, after netting.
type OwesEntry struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// MemberBalance is one member's position within a group.
type MemberBalance struct {
	UserID string `json:"userId"`
	// TotalBalance is accumulated directly from expenses and settlements,
	// independently of the netted ledger. Positive = the group owes this member.
	TotalBalance decimal.Decimal `json:"totalBalance"`
	OwedBy       []OwedByEntry   `json:"owedBy"`
	Owes         []OwesEntry     `json:"owes"`
	// Former marks someone with history in the group who is no longer a member.
	Former bool `json:"former,omitempty"`
}

// Debt is a single directional debt between two members.
type Debt struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupBalances is the netted ledger of a group.
//
// Members are laid out in an arena ordered by user id; the ledger is a dense
// n×n matrix in row-major order where ledger[debtor*n+creditor] is what the
// debtor owes the creditor. After netting at most one direction per pair is
// non-zero.
type GroupBalances struct {
	Members []MemberBalance `json:"members"`

	index  map[string]int
	ledger []decimal.Decimal
}

// GroupLedger computes the netted ledger of a group from its expenses and
// settlements. The caller passes only records that belong to the group.
//
// For each unpaid split of a non-payer the debtor owes the payer the split
// amount; each settlement reduces what the payer owes the receiver. Opposite
// debts between a pair are then collapsed into a single net direction.
// Per-member totals are accumulated separately from the ledger; use
// CheckConsistency to compare the two.
//
// Users who appear in records but not in members (they left the group) keep
// their history and are reported with Former set.
func GroupLedger(members []string, expenses []*models.Expense, settlements []*models.Settlement) (*GroupBalances, error) {
	if len(members) == 0 {
		return nil, apperrors.ErrEmptyGroup
	}

	// current marks membership for the Former flag; ids grows to every
	// user with records in the group.
	current := make(map[string]bool, len(members))
	ids := make(map[string]bool, len(members))
	for _, m := range members {
		if m == "" {
			return nil, apperrors.InvalidArgument("empty member id")
		}
		current[m] = true
		ids[m] = true
	}
	for _, e := range expenses {
		if e == nil {
			continue
		}
		ids[e.PaidByUserID] = true
		for _, s := range e.Splits {
			ids[s.UserID] = true
		}
	}
	for _, s := range settlements {
		if s == nil {
			continue
		}
		ids[s.PaidByUserID] = true
		ids[s.ReceivedByUserID] = true
	}

	arena := make([]string, 0, len(ids))
	for id := range ids {
		arena = append(arena, id)
	}
	sort.Strings(arena)

	n := len(arena)
	g := &GroupBalances{
		index:  make(map[string]int, n),
		ledger: make([]decimal.Decimal, n*n),
	}
	for i, id := range arena {
		g.index[id] = i
	}
	for i := range g.ledger {
		g.ledger[i] = decimal.Zero
	}
	totals := make([]decimal.Decimal, n)
	for i := range totals {
		totals[i] = decimal.Zero
	}

	for _, e := range expenses {
		if e == nil {
			continue
		}
		payer := g.index[e.PaidByUserID]
		for _, s := range e.Splits {
			if s.UserID == e.PaidByUserID || s.Paid {
				continue
			}
			debtor := g.index[s.UserID]
			totals[payer] = totals[payer].Add(s.Amount)
			totals[debtor] = totals[debtor].Sub(s.Amount)
			g.ledger[debtor*n+payer] = g.ledger[debtor*n+payer].Add(s.Amount)
		}
	}

	for _, s := range settlements {
		if s == nil || s.PaidByUserID == s.ReceivedByUserID {
			continue
		}
		payer := g.index[s.PaidByUserID]
		receiver := g.index[s.ReceivedByUserID]
		totals[payer] = totals[payer].Add(s.Amount)
		totals[receiver] = totals[receiver].Sub(s.Amount)
		g.ledger[payer*n+receiver] = g.ledger[payer*n+receiver].Sub(s.Amount)
	}

	// Netting: keep one direction per pair.
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			diff := g.ledger[a*n+b].Sub(g.ledger[b*n+a])
			switch diff.Sign() {
			case 1:
				g.ledger[a*n+b] = diff
				g.ledger[b*n+a] = decimal.Zero
			case -1:
				g.ledger[b*n+a] = diff.Neg()
				g.ledger[a*n+b] = decimal.Zero
			default:
				g.ledger[a*n+b] = decimal.Zero
				g.ledger[b*n+a] = decimal.Zero
			}
		}
	}

	g.Members = make([]MemberBalance, n)
	for i, id := range arena {
		mb := MemberBalance{
			UserID:       id,
			TotalBalance: totals[i],
			OwedBy:       []OwedByEntry{},
			Owes:         []OwesEntry{},
			Former:       !current[id],
		}
		for j, other := range arena {
			if j == i {
				continue
			}
			if owed := g.ledger[i*n+j]; owed.IsPositive() {
				mb.Owes = append(mb.Owes, OwesEntry{To: other, Amount: owed})
			}
			if owed := g.ledger[j*n+i]; owed.IsPositive() {
				mb.OwedBy = append(mb.OwedBy, OwedByEntry{From: other, Amount: owed})
			}
		}
		g.Members[i] = mb
	}
	return g, nil
}

// Member returns the balance of userID, or nil if they have no place in the group.
func (g *GroupBalances) Member(userID string) *MemberBalance {
	i, ok := g.index[userID]
	if !ok {
		return nil
	}
	return &g.Members[i]
}

// Owed returns what debtor owes creditor after netting.
func (g *GroupBalances) Owed(debtor, creditor string) decimal.Decimal {
	d, ok := g.index[debtor]
	if !ok {
		return decimal.Zero
	}
	c, ok := g.index[creditor]
	if !ok || c == d {
		return decimal.Zero
	}
	return g.ledger[d*len(g.Members)+c]
}

// Debts flattens the netted ledger into directional debts, ordered by
// debtor then creditor id.
func (g *GroupBalances) Debts() []Debt {
	debts := []Debt{}
	for _, m := range g.Members {
		for _, o := range m.Owes {
			debts = append(debts, Debt{From: m.UserID, To: o.To, Amount: o.Amount})
		}
	}
	return debts
}

// CheckConsistency verifies that every member's independently accumulated
// TotalBalance matches sum(OwedBy) - sum(Owes) within tolerance.
func (g *GroupBalances) CheckConsistency(tolerance decimal.Decimal) error {
	var mismatched []string
	for _, m := range g.Members {
		in := make([]decimal.Decimal, len(m.OwedBy))
		for i, o := range m.OwedBy {
			in[i] = o.Amount
		}
		out := make([]decimal.Decimal, len(m.Owes))
		for i, o := range m.Owes {
			out[i] = o.Amount
		}
		derived := sum(in...).Sub(sum(out...))
		if derived.Sub(m.TotalBalance).Abs().GreaterThan(tolerance) {
			mismatched = append(mismatched, m.UserID+" (total "+m.TotalBalance.String()+", ledger "+derived.String()+")")
		}
	}
	if len(mismatched) > 0 {
		return apperrors.Inconsistent("group totals disagree with ledger for %s", strings.Join(mismatched, ", "))
	}
	return nil
}

// UnmarshalJSON restores the arena index and the netted ledger from the
// serialized member list, so cached balances answer Member and Owed.
func (g *GroupBalances) UnmarshalJSON(data []byte) error {
	var wire struct {
		Members []MemberBalance `json:"members"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	n := len(wire.Members)
	g.Members = wire.Members
	g.index = make(map[string]int, n)
	g.ledger = make([]decimal.Decimal, n*n)
	for i := range g.ledger {
		g.ledger[i] = decimal.Zero
	}
	for i, m := range g.Members {
		g.index[m.UserID] = i
	}
	for i, m := range g.Members {
		for _, o := range m.Owes {
			j, ok := g.index[o.To]
			if !ok {
				return apperrors.Inconsistent("debt to unknown member %s", o.To)
			}
			g.ledger[i*n+j] = o.Amount
		}
	}
	return nil
}
