// Package idhash computes deterministic identifiers so that replaying
// the same capture never creates a second row.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeSnapshotID computes a deterministic snapshot_id using SHA256.
// Formula: SHA256(keyword_id|marketplace|capture_unix_ms)
// Returns hex-encoded hash (64 characters).
func ComputeSnapshotID(keywordID int64, marketplace string, captureTime time.Time) string {
	data := fmt.Sprintf("%d|%s|%d",
		keywordID,
		marketplace,
		captureTime.UTC().UnixMilli(),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
