package domain

import "time"

// Product is the mutable current-state entity for one ASIN.
// Corresponds to products table in PostgreSQL.
//
// Current fields (price, rating, review count, brand, category,
// subcategory, marketplace) hold the latest known value and are
// overwritten by each fresh non-null observation. A product may exist
// before enrichment, created from a bare search result, and is enriched
// in place by field-level merge.
type Product struct {
	ASIN               string    // PRIMARY KEY, globally unique
	Title              *string   // backfilled only when previously unset
	Brand              *string   // set by enrichment
	Category           *string   // set by enrichment
	Subcategory        *string   // set by enrichment
	Marketplace        *string   // set once, first non-empty observation
	FirstSeen          time.Time // set on create, never changed
	LastUpdated        time.Time // stamped on every mutating write
	CurrentPrice       *float64
	CurrentRating      *float64
	CurrentReviewCount *int
}

// PriceHistory is an append-only price fact for one ASIN.
// Corresponds to price_history table in PostgreSQL. A row exists if and
// only if the triggering observation carried a non-null price; rows are
// never updated or deleted.
type PriceHistory struct {
	ASIN     string    // FK to products
	Date     time.Time // processing time of the observation (UTC)
	Price    float64   // observed price, always set
	Currency string    // resolved currency, "USD" fallback
}
