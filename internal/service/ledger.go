package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// LedgerLoader computes group ledgers, reading through the balance cache.
type LedgerLoader struct {
	store   storage.Store
	cache   cache.BalanceCache
	metrics *metrics.Metrics
}

// NewLedgerLoader creates a loader. A nil cache disables caching and nil
// metrics records nothing.
func NewLedgerLoader(store storage.Store, c cache.BalanceCache, m *metrics.Metrics) *LedgerLoader {
	if c == nil {
		c = cache.Nop{}
	}
	return &LedgerLoader{store: store, cache: c, metrics: m}
}

// Load returns the group's netted ledger at the group's current ledger
// version. The bool reports whether it came from the cache. Cache failures
// are logged and fall back to computing.
func (l *LedgerLoader) Load(ctx context.Context, group *models.Group) (*calculator.GroupBalances, bool, error) {
	cached, ok, err := l.cache.GetGroupBalances(ctx, group.ID, group.LedgerVersion)
	switch {
	case err != nil:
		l.metrics.CacheError()
		slog.Warn("Balance cache read failed", "group_id", group.ID, "error", err)
	case ok:
		l.metrics.CacheHit()
		return cached, true, nil
	default:
		l.metrics.CacheMiss()
	}

	start := time.Now()
	expenses, err := l.store.ListGroupExpenses(ctx, group.ID)
	if err != nil {
		return nil, false, err
	}
	settlements, err := l.store.ListGroupSettlements(ctx, group.ID)
	if err != nil {
		return nil, false, err
	}

	balances, err := calculator.GroupLedger(group.MemberIDs(), expenses, settlements)
	if err != nil {
		return nil, false, fmt.Errorf("group %s: %w", group.ID, err)
	}
	if err := balances.CheckConsistency(calculator.ZeroThreshold); err != nil {
		slog.Error("Group ledger inconsistent", "group_id", group.ID, "error", err)
		return nil, false, err
	}
	l.metrics.ObserveBalance(metrics.ViewGroup, start)

	if err := l.cache.SetGroupBalances(ctx, group.ID, group.LedgerVersion, balances); err != nil {
		l.metrics.CacheError()
		slog.Warn("Balance cache write failed", "group_id", group.ID, "error", err)
	}

	slog.Debug("Group ledger computed",
		"group_id", group.ID,
		"ledger_version", group.LedgerVersion,
		"expenses_count", len(expenses),
		"settlements_count", len(settlements),
	)
	return balances, false, nil
}
