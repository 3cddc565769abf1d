// Package enrich merges product-detail payloads into the product
// master and ingests the review entries they carry.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/normalize"
	"serp-market-lab/internal/rollup"
	"serp-market-lab/internal/storage"
)

// Enricher applies detail-page payloads to products.
type Enricher struct {
	products storage.ProductStore
	reviews  storage.ReviewStore
	rollup   *rollup.Calculator
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithClock overrides the capture timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) { e.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Enricher) { e.logger = logger }
}

// New creates an Enricher. The rollup calculator is invoked whenever an
// enrichment sets or changes a product's brand.
func New(products storage.ProductStore, reviews storage.ReviewStore, calc *rollup.Calculator, opts ...Option) *Enricher {
	e := &Enricher{
		products: products,
		reviews:  reviews,
		rollup:   calc,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich merges a detail payload into the product. Empty payloads are
// a no-op. Loosely typed rating and review-count values are coerced;
// a value that fails coercion leaves the prior field untouched. The
// marketplace is stamped only on products that do not have one yet.
// Review entries ride along and are stored via IngestReviews, and a
// set-or-changed brand triggers a seller rollup recompute.
func (e *Enricher) Enrich(ctx context.Context, product *domain.Product, payload *domain.EnrichmentPayload, marketplace string) error {
	if product == nil {
		return fmt.Errorf("enrich: %w", storage.ErrInvalidInput)
	}
	if payloadEmpty(payload) {
		return nil
	}

	var prevBrand string
	if product.Brand != nil {
		prevBrand = *product.Brand
	}

	if payload.Brand != "" {
		brand := payload.Brand
		product.Brand = &brand
	}
	if payload.Category != "" {
		category := payload.Category
		product.Category = &category
	}
	if payload.Subcategory != "" {
		sub := payload.Subcategory
		product.Subcategory = &sub
	}

	if payload.Rating != nil {
		if rating := normalize.Float(payload.Rating); rating != nil {
			product.CurrentRating = rating
		} else {
			e.logger.Debug("uncoercible rating in enrichment",
				zap.String("asin", product.ASIN))
		}
	}
	if payload.ReviewCount != nil {
		if count := normalize.Int(payload.ReviewCount); count != nil {
			product.CurrentReviewCount = count
		} else {
			e.logger.Debug("uncoercible review count in enrichment",
				zap.String("asin", product.ASIN))
		}
	}
	if amount, _, _ := normalize.Price(payload.Price); amount != nil {
		product.CurrentPrice = amount
	}

	if (product.Marketplace == nil || *product.Marketplace == "") && marketplace != "" {
		mp := marketplace
		product.Marketplace = &mp
	}

	product.LastUpdated = e.now().UTC()
	if err := e.products.Update(ctx, product); err != nil {
		return fmt.Errorf("update product %s: %w", product.ASIN, err)
	}

	if len(payload.RecentReviews) > 0 {
		stored, err := e.IngestReviews(ctx, product.ASIN, payload.RecentReviews)
		if err != nil {
			return err
		}
		e.logger.Debug("reviews ingested",
			zap.String("asin", product.ASIN),
			zap.Int("stored", stored))
	}

	if product.Brand != nil && *product.Brand != prevBrand {
		if err := e.rollup.Recompute(ctx, *product.Brand, marketplace); err != nil {
			return fmt.Errorf("recompute rollup for brand %q: %w", *product.Brand, err)
		}
	}

	return nil
}

// IngestReviews stores review entries for an ASIN, keyed by the
// external review id. Entries missing an id or a rating are skipped
// silently, as are entries whose rating fails float-then-truncate
// coercion. Already-seen review ids are skipped, so re-ingesting the
// same page never double-counts. Returns the number of rows stored.
func (e *Enricher) IngestReviews(ctx context.Context, asin string, raws []*domain.RawReview) (int, error) {
	now := e.now().UTC()
	stored := 0

	for _, raw := range raws {
		if raw == nil || raw.ID == "" || raw.Rating == nil {
			continue
		}
		rating := normalize.Int(raw.Rating)
		if rating == nil {
			continue
		}

		seen, err := e.reviews.Exists(ctx, raw.ID)
		if err != nil {
			return stored, fmt.Errorf("check review %s: %w", raw.ID, err)
		}
		if seen {
			continue
		}

		review := &domain.Review{
			ReviewID:         raw.ID,
			ASIN:             asin,
			Rating:           *rating,
			VerifiedPurchase: raw.VerifiedPurchase,
			ReviewDate:       normalize.ReviewDate(raw.ReviewDate),
			CapturedAt:       now,
		}
		if raw.Title != "" {
			title := raw.Title
			review.Title = &title
		}
		if raw.Text != "" {
			text := raw.Text
			review.Text = &text
		}
		if raw.HelpfulVotes != nil {
			review.HelpfulVotes = *raw.HelpfulVotes
		}

		// Insert can still collide with a concurrent writer; the
		// duplicate stays a no-op either way.
		err = e.reviews.Insert(ctx, review)
		switch {
		case err == nil:
			stored++
		case errors.Is(err, storage.ErrDuplicateKey):
			continue
		default:
			return stored, fmt.Errorf("insert review %s: %w", raw.ID, err)
		}
	}

	return stored, nil
}

func payloadEmpty(p *domain.EnrichmentPayload) bool {
	if p == nil {
		return true
	}
	return p.Brand == "" && p.Category == "" && p.Subcategory == "" &&
		p.Rating == nil && p.ReviewCount == nil && p.Price == nil &&
		len(p.RecentReviews) == 0
}
