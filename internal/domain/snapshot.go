package domain

import "time"

// Snapshot represents one SERP capture event for a keyword.
// Corresponds to serp_snapshots table in PostgreSQL.
type Snapshot struct {
	SnapshotID   string    // PRIMARY KEY, deterministic hash
	KeywordID    int64     // FK to keywords
	Marketplace  string    // marketplace code
	CaptureTime  time.Time // when the SERP was captured (UTC)
	TotalResults int       // number of owned results
	Results      []*Result // rank-ordered results, positions 1..n
}

// Result is a single immutable SERP observation within a snapshot.
// Corresponds to serp_results table in PostgreSQL. Results are never
// mutated after insert; the ASIN is a soft reference that may point at
// a product not yet reconciled.
type Result struct {
	SnapshotID  string   // FK to serp_snapshots
	ASIN        string   // marketplace product identifier
	Position    int      // 1-based rank, unique within a snapshot
	IsSponsored bool     // sponsored placement flag
	Title       *string  // listing title (nullable)
	Price       *float64 // observed price (nullable)
	Currency    *string  // price currency (nullable)
	Rating      *float64 // star rating (nullable)
	ReviewCount *int     // review count (nullable)
	ImageURL    *string  // main image URL (nullable)
}
