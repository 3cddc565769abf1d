package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

func TestTxRunner_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	runner := NewTxRunner(pool)
	now := time.Now().UTC()

	t.Run("commit lands the whole batch", func(t *testing.T) {
		err := runner.RunInTx(ctx, func(ctx context.Context, stores *storage.Stores) error {
			p := &domain.Product{ASIN: "B0TX1", FirstSeen: now, LastUpdated: now}
			if err := stores.Products.Insert(ctx, p); err != nil {
				return err
			}
			return stores.PriceHistory.Insert(ctx, &domain.PriceHistory{
				ASIN: "B0TX1", Date: now, Price: 12.5, Currency: "USD",
			})
		})
		require.NoError(t, err)

		_, err = NewProductStore(pool).GetByASIN(ctx, "B0TX1")
		assert.NoError(t, err)

		entries, err := NewPriceHistoryStore(pool).GetByASIN(ctx, "B0TX1")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("error rolls back every write", func(t *testing.T) {
		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(ctx context.Context, stores *storage.Stores) error {
			p := &domain.Product{ASIN: "B0TX2", FirstSeen: now, LastUpdated: now}
			if err := stores.Products.Insert(ctx, p); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewProductStore(pool).GetByASIN(ctx, "B0TX2")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDailyMetricStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewDailyMetricStore(pool)
	keyword := seedKeyword(t, pool, "cork coaster set")
	day := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	first := &domain.DailyMetric{
		KeywordID:      keyword.ID,
		Date:           day,
		MedianPrice:    ptr(19.99),
		TotalProducts:  10,
		SponsoredCount: 4,
		OrganicCount:   6,
		NewEntrants:    10,
	}
	require.NoError(t, store.Upsert(ctx, first))

	// Same calendar day at a different hour replaces, never duplicates.
	second := &domain.DailyMetric{
		KeywordID:      keyword.ID,
		Date:           day.Add(8 * time.Hour),
		MedianPrice:    ptr(18.49),
		TotalProducts:  12,
		SponsoredCount: 5,
		OrganicCount:   7,
		NewEntrants:    2,
	}
	require.NoError(t, store.Upsert(ctx, second))

	got, err := store.GetByKeywordDate(ctx, keyword.ID, day)
	require.NoError(t, err)
	assert.Equal(t, 12, got.TotalProducts)
	require.NotNil(t, got.MedianPrice)
	assert.InDelta(t, 18.49, *got.MedianPrice, 1e-9)

	rows, err := store.GetSince(ctx, day.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
