package ledger

import "context"

// BalanceCache stores per-user balance views between writes.
// Implementations must treat every call as best effort.
//
// Every user has a generation that Invalidate advances. A view read from the
// store is only cached under the generation observed before the read, so a
// write committed in between cannot be masked by the older view.
type BalanceCache interface {
	// GetBalance reports whether a cached view exists for userID.
	GetBalance(ctx context.Context, userID string) ([]BalanceEntry, bool, error)

	// Generation returns the current generation of userID.
	Generation(ctx context.Context, userID string) (int64, error)

	// SetBalance caches entries for userID if its generation is still gen.
	// A stale gen is not an error; the entries are just dropped.
	SetBalance(ctx context.Context, userID string, gen int64, entries []BalanceEntry) error

	// Invalidate drops the cached views of userIDs and advances their generations.
	Invalidate(ctx context.Context, userIDs ...string) error
}

type nopCache struct{}

func (nopCache) GetBalance(context.Context, string) ([]BalanceEntry, bool, error) {
	return nil, false, nil
}

func (nopCache) Generation(context.Context, string) (int64, error) { return 0, nil }

func (nopCache) SetBalance(context.Context, string, int64, []BalanceEntry) error { return nil }

func (nopCache) Invalidate(context.Context, ...string) error { return nil }
