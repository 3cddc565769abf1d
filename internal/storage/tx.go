package storage

import "context"

// Stores bundles one store per entity so a whole batch can run against
// a single backend state.
type Stores struct {
	Keywords     KeywordStore
	Snapshots    SnapshotStore
	Products     ProductStore
	PriceHistory PriceHistoryStore
	Reviews      ReviewStore
	Sellers      SellerStore
	DailyMetrics DailyMetricStore
}

// TxRunner executes fn as one unit of work. A logical batch (all
// results of one snapshot, or all keyword metrics for one date) runs
// inside a single RunInTx call and commits once at the end; any error
// from fn rolls the whole batch back. Per-record normalization
// failures are handled inside fn and never abort the batch.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s *Stores) error) error
}
