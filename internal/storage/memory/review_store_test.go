package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

func TestReviewStore_DuplicateInsert(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()

	review := &domain.Review{
		ReviewID:   "R100",
		ASIN:       "B0TEST",
		Rating:     5,
		CapturedAt: time.Now().UTC(),
	}

	if err := store.Insert(ctx, review); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err := store.Insert(ctx, review)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	exists, err := store.Exists(ctx, "R100")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected review to exist")
	}

	reviews, err := store.GetByASIN(ctx, "B0TEST")
	if err != nil {
		t.Fatalf("GetByASIN failed: %v", err)
	}
	if len(reviews) != 1 {
		t.Errorf("expected exactly 1 stored review, got %d", len(reviews))
	}
}

func TestReviewStore_InvalidInput(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()

	err := store.Insert(ctx, &domain.Review{ASIN: "B0TEST"})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing review_id, got %v", err)
	}
}
