package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceEntry is one counterpart in an owing list.
type BalanceEntry struct {
	UserID   string          `json:"userId"`
	Name     string          `json:"name"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// OweDetails lists counterparts on each side, largest amount first.
type OweDetails struct {
	YouOwe     []BalanceEntry `json:"youOwe"`
	YouAreOwed []BalanceEntry `json:"youAreOwed"`
}

// AggregateBalance is the viewer's netted portfolio.
type AggregateBalance struct {
	YouOwe       decimal.Decimal `json:"youOwe"`
	YouAreOwed   decimal.Decimal `json:"youAreOwed"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
	OweDetails   OweDetails      `json:"oweDetails"`
}

// AdvancedBalance extends AggregateBalance with gross, un-netted totals.
type AdvancedBalance struct {
	AggregateBalance
	GrossYouAreOwed    decimal.Decimal `json:"grossYouAreOwed"`
	GrossYouOwe        decimal.Decimal `json:"grossYouOwe"`
	TotalUsersInvolved int             `json:"totalUsersInvolved"`
}

// AggregateBalances rolls per-counterpart balances up into a portfolio view.
// Each counterpart contributes its net: negative nets go to YouOwe, positive
// ones to YouAreOwed, both as absolute values. Counterparts whose net rounds
// to zero cents are dropped. Lists are sorted by amount descending; ties keep
// input order.
func AggregateBalances(entries []CounterpartBalance) AggregateBalance {
	agg := AggregateBalance{
		YouOwe:     decimal.Zero,
		YouAreOwed: decimal.Zero,
		OweDetails: OweDetails{
			YouOwe:     []BalanceEntry{},
			YouAreOwed: []BalanceEntry{},
		},
	}

	for _, e := range entries {
		net := e.Net()
		if isSettled(net) {
			continue
		}
		entry := BalanceEntry{UserID: e.UserID, Name: e.Name, ImageURL: e.ImageURL, Amount: net.Abs()}
		if net.IsNegative() {
			agg.YouOwe = agg.YouOwe.Add(entry.Amount)
			agg.OweDetails.YouOwe = append(agg.OweDetails.YouOwe, entry)
		} else {
			agg.YouAreOwed = agg.YouAreOwed.Add(entry.Amount)
			agg.OweDetails.YouAreOwed = append(agg.OweDetails.YouAreOwed, entry)
		}
	}

	sortDescending(agg.OweDetails.YouOwe)
	sortDescending(agg.OweDetails.YouAreOwed)
	agg.TotalBalance = agg.YouAreOwed.Sub(agg.YouOwe)
	return agg
}

// AdvancedBreakdown reports the netted portfolio together with gross flows:
// GrossYouAreOwed sums every counterpart's Credit and GrossYouOwe every
// Debit, without netting one against the other.
func AdvancedBreakdown(entries []CounterpartBalance) AdvancedBalance {
	adv := AdvancedBalance{
		AggregateBalance: AggregateBalances(entries),
		GrossYouAreOwed:  decimal.Zero,
		GrossYouOwe:      decimal.Zero,
	}
	for _, e := range entries {
		adv.GrossYouAreOwed = adv.GrossYouAreOwed.Add(e.Credit)
		adv.GrossYouOwe = adv.GrossYouOwe.Add(e.Debit)
		if !e.Credit.IsZero() || !e.Debit.IsZero() {
			adv.TotalUsersInvolved++
		}
	}
	return adv
}

// TotalBalances merges the viewer's individual balances with their netted
// position in each group into one balance per counterpart, ordered by user id.
// Group debts count as Debit, group credits as Credit.
func TotalBalances(viewerID string, individual []CounterpartBalance, groups []*GroupBalances) []CounterpartBalance {
	byUser := make(map[string]*CounterpartBalance, len(individual))
	entry := func(userID string) *CounterpartBalance {
		cb, ok := byUser[userID]
		if !ok {
			cb = &CounterpartBalance{UserID: userID, Credit: decimal.Zero, Debit: decimal.Zero}
			byUser[userID] = cb
		}
		return cb
	}

	for _, ind := range individual {
		cb := entry(ind.UserID)
		cb.Credit = cb.Credit.Add(ind.Credit)
		cb.Debit = cb.Debit.Add(ind.Debit)
		if cb.Name == "" {
			cb.Name, cb.ImageURL = ind.Name, ind.ImageURL
		}
	}

	for _, g := range groups {
		if g == nil {
			continue
		}
		m := g.Member(viewerID)
		if m == nil {
			continue
		}
		for _, o := range m.OwedBy {
			cb := entry(o.From)
			cb.Credit = cb.Credit.Add(o.Amount)
		}
		for _, o := range m.Owes {
			cb := entry(o.To)
			cb.Debit = cb.Debit.Add(o.Amount)
		}
	}

	result := make([]CounterpartBalance, 0, len(byUser))
	for _, cb := range byUser {
		result = append(result, *cb)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result
}

func sortDescending(entries []BalanceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})
}
