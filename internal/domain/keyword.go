package domain

import "time"

// Keyword represents a tracked search term for one marketplace.
// Corresponds to keywords table in PostgreSQL.
type Keyword struct {
	ID          int64     // PRIMARY KEY, store-assigned
	Text        string    // search term, unique per marketplace
	Marketplace string    // marketplace code (US, UK, ...)
	IsActive    bool      // deactivated keywords are kept, never deleted
	CreatedAt   time.Time // record creation time (UTC)
}
