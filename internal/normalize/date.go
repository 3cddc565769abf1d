package normalize

import (
	"strings"
	"time"
)

// ReviewDate parses an upstream review date. Two formats are accepted:
// a full RFC 3339 timestamp (a trailing "Z" zone marker is treated as
// the +00:00 offset) and a bare YYYY-MM-DD date. Unparsable input
// yields nil, never an error.
func ReviewDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		t = t.UTC()
		return &t
	}

	return nil
}
