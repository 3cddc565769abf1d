// Package reconcile folds raw search results into the product master
// records, maintaining first-seen and last-updated lineage and the
// append-only price history.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// ErrMissingASIN is returned for a search result that carries no ASIN.
// It is the only per-record hard failure; every other absent field
// degrades to a nil column.
var ErrMissingASIN = errors.New("search result has no asin")

const defaultCurrency = "USD"

// Reconciler merges search observations into product records.
type Reconciler struct {
	products     storage.ProductStore
	priceHistory storage.PriceHistoryStore
	now          func() time.Time
	logger       *zap.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the processing-time source. Used by tests and by
// batch drivers that want one timestamp across a whole run.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// New creates a Reconciler over the given stores.
func New(products storage.ProductStore, priceHistory storage.PriceHistoryStore, opts ...Option) *Reconciler {
	r := &Reconciler{
		products:     products,
		priceHistory: priceHistory,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile applies one search observation to the product master.
// Unknown ASINs create a product stamped first_seen = now; known ASINs
// have their current fields overwritten by non-nil observed values
// only, so a capture missing a price never erases the last known one.
// The title is backfilled once and never overwritten here.
//
// When the observation carries a price, a price history row is
// appended, stamped with processing time and defaulting the currency
// to USD. Returns the resulting product and whether it was created.
func (r *Reconciler) Reconcile(ctx context.Context, res *domain.SearchResult) (*domain.Product, bool, error) {
	if res == nil || res.ASIN == "" {
		return nil, false, ErrMissingASIN
	}

	now := r.now().UTC()
	created := false

	product, err := r.products.GetByASIN(ctx, res.ASIN)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		product = &domain.Product{
			ASIN:               res.ASIN,
			Title:              res.Title,
			CurrentPrice:       res.Price,
			CurrentRating:      res.Rating,
			CurrentReviewCount: res.ReviewCount,
			FirstSeen:          now,
			LastUpdated:        now,
		}
		if err := r.products.Insert(ctx, product); err != nil {
			return nil, false, fmt.Errorf("insert product %s: %w", res.ASIN, err)
		}
		created = true
		r.logger.Debug("product created",
			zap.String("asin", res.ASIN))
	case err != nil:
		return nil, false, fmt.Errorf("get product %s: %w", res.ASIN, err)
	default:
		if product.Title == nil && res.Title != nil {
			product.Title = res.Title
		}
		if res.Price != nil {
			product.CurrentPrice = res.Price
		}
		if res.Rating != nil {
			product.CurrentRating = res.Rating
		}
		if res.ReviewCount != nil {
			product.CurrentReviewCount = res.ReviewCount
		}
		product.LastUpdated = now
		if err := r.products.Update(ctx, product); err != nil {
			return nil, false, fmt.Errorf("update product %s: %w", res.ASIN, err)
		}
	}

	if res.Price != nil {
		currency := defaultCurrency
		if res.Currency != nil && *res.Currency != "" {
			currency = *res.Currency
		}
		entry := &domain.PriceHistory{
			ASIN:     res.ASIN,
			Date:     now,
			Price:    *res.Price,
			Currency: currency,
		}
		if err := r.priceHistory.Insert(ctx, entry); err != nil {
			return nil, false, fmt.Errorf("append price history for %s: %w", res.ASIN, err)
		}
	}

	return product, created, nil
}
