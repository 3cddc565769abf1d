package memory

import (
	"context"

	"serp-market-lab/internal/storage"
)

// NewStores creates a full set of in-memory stores.
func NewStores() *storage.Stores {
	return &storage.Stores{
		Keywords:     NewKeywordStore(),
		Snapshots:    NewSnapshotStore(),
		Products:     NewProductStore(),
		PriceHistory: NewPriceHistoryStore(),
		Reviews:      NewReviewStore(),
		Sellers:      NewSellerStore(),
		DailyMetrics: NewDailyMetricStore(),
	}
}

// TxRunner is a pass-through storage.TxRunner over in-memory stores.
// Memory stores have no rollback; batch atomicity is only exercised
// against the durable backends.
type TxRunner struct {
	stores *storage.Stores
}

// NewTxRunner creates a TxRunner bound to the given stores.
func NewTxRunner(stores *storage.Stores) *TxRunner {
	return &TxRunner{stores: stores}
}

// RunInTx runs fn directly against the bound stores.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, s *storage.Stores) error) error {
	return fn(ctx, r.stores)
}

var _ storage.TxRunner = (*TxRunner)(nil)
