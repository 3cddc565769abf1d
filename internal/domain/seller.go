package domain

import "time"

// Seller is a denormalized per-brand rollup over the current product
// population. Corresponds to sellers table in PostgreSQL. It is not an
// independent source of truth: every field except first_seen is fully
// recomputable from products sharing the brand.
type Seller struct {
	BrandName    string    // PRIMARY KEY (unique brand name)
	Marketplace  string    // defaults to "US" on first sight
	FirstSeen    time.Time // stamped when the brand is first observed
	ProductCount int       // count of products carrying this brand
	AvgRating    *float64  // mean of non-null current ratings, nil if none
	TotalReviews int       // sum of non-null current review counts
}
