package domain

import "time"

// Review is a customer review keyed by its external review_id.
// Corresponds to reviews table in PostgreSQL. Insertion is idempotent:
// an already-seen review_id is a no-op, never an update.
type Review struct {
	ReviewID         string     // UNIQUE external identifier
	ASIN             string     // FK to products
	Rating           int        // required, float-then-truncate coercion
	Title            *string    // review headline (nullable)
	Text             *string    // review body (nullable)
	VerifiedPurchase bool       // verified-purchase flag
	ReviewDate       *time.Time // nil when the source date is unparsable
	HelpfulVotes     int        // defaults to 0 when absent
	CapturedAt       time.Time  // when the review was ingested (UTC)
}
