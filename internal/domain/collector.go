package domain

// SearchResult is the per-result record delivered by the upstream
// search collector. Nullable fields stay nil when the source omitted
// or failed to parse them; only a missing ASIN makes a record
// malformed.
type SearchResult struct {
	ASIN         string
	Title        *string
	Price        *float64
	PriceDisplay *string
	Currency     *string
	Rating       *float64
	ReviewCount  *int
	Position     int
	IsSponsored  bool
	ImageURL     *string
}

// EnrichmentPayload is the out-of-band product detail record delivered
// by the upstream product collector. All fields are best-effort; an
// empty payload is a valid no-op.
type EnrichmentPayload struct {
	Brand         string
	Category      string
	Subcategory   string
	Rating        any // numeric or string, coerced best-effort
	ReviewCount   any // numeric or string, coerced best-effort
	Price         *RawPrice
	RecentReviews []*RawReview
}

// RawPrice is the heterogeneous upstream price payload: a structured
// value/currency/display object whose value may itself be numeric or a
// string.
type RawPrice struct {
	Value    any
	Currency string
	Display  string
}

// RawReview is one unvalidated review entry from the upstream reviews
// endpoint. ID and Rating are required for ingestion; everything else
// is optional.
type RawReview struct {
	ID               string
	Rating           any // numeric or string, float-then-truncate
	Title            string
	Text             string
	VerifiedPurchase bool
	ReviewDate       string // RFC 3339 timestamp or bare YYYY-MM-DD
	HelpfulVotes     *int
}
