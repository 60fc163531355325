package metrics

import (
	"context"

	"github.com/mmynk/splitledger/internal/ledger"
)

type instrumentedCache struct {
	ledger.BalanceCache
	m *Metrics
}

// InstrumentCache counts hits and misses of cache lookups.
func (m *Metrics) InstrumentCache(cache ledger.BalanceCache) ledger.BalanceCache {
	return &instrumentedCache{BalanceCache: cache, m: m}
}

func (c *instrumentedCache) GetBalance(ctx context.Context, userID string) ([]ledger.BalanceEntry, bool, error) {
	entries, ok, err := c.BalanceCache.GetBalance(ctx, userID)
	if err == nil {
		c.m.CacheLookup(ok)
	}
	return entries, ok, err
}
