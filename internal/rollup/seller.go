// Package rollup maintains the derived per-brand seller aggregates.
package rollup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// Calculator recomputes seller rollups from the product master.
type Calculator struct {
	products storage.ProductStore
	sellers  storage.SellerStore
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the first-seen timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) { c.logger = logger }
}

// New creates a Calculator over the given stores.
func New(products storage.ProductStore, sellers storage.SellerStore, opts ...Option) *Calculator {
	c := &Calculator{
		products: products,
		sellers:  sellers,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recompute rebuilds one brand's rollup from the full current state of
// the product master. It is not incremental: product count, average
// rating over rated products, and summed review counts are derived
// from scratch on every call, so repeated invocation converges on the
// same row. A brand's first_seen is set once and kept thereafter.
func (c *Calculator) Recompute(ctx context.Context, brand, marketplace string) error {
	if brand == "" {
		return fmt.Errorf("recompute seller: %w", storage.ErrInvalidInput)
	}

	seller, err := c.sellers.GetByBrand(ctx, brand)
	insert := false
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if marketplace == "" {
			marketplace = "US"
		}
		seller = &domain.Seller{
			BrandName:   brand,
			Marketplace: marketplace,
			FirstSeen:   c.now().UTC(),
		}
		insert = true
	case err != nil:
		return fmt.Errorf("get seller %q: %w", brand, err)
	}

	products, err := c.products.GetByBrand(ctx, brand)
	if err != nil {
		return fmt.Errorf("list products for brand %q: %w", brand, err)
	}

	var (
		ratingSum   float64
		ratingCount int
		reviewTotal int
	)
	for _, p := range products {
		if p.CurrentRating != nil {
			ratingSum += *p.CurrentRating
			ratingCount++
		}
		if p.CurrentReviewCount != nil {
			reviewTotal += *p.CurrentReviewCount
		}
	}

	seller.ProductCount = len(products)
	seller.TotalReviews = reviewTotal
	if ratingCount > 0 {
		avg := ratingSum / float64(ratingCount)
		seller.AvgRating = &avg
	} else {
		seller.AvgRating = nil
	}

	if insert {
		err = c.sellers.Insert(ctx, seller)
	} else {
		err = c.sellers.Update(ctx, seller)
	}
	if err != nil {
		return fmt.Errorf("store seller %q: %w", brand, err)
	}

	c.logger.Debug("seller rollup recomputed",
		zap.String("brand", brand),
		zap.Int("product_count", seller.ProductCount))
	return nil
}
