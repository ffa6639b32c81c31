// Package audit records scored predictions for offline model monitoring.
// Entries are best-effort: a failed insert is logged and dropped, never
// surfaced to the caller.
package audit

import (
	"context"
	"time"

	"github.com/dishpatch/dishpatch/internal/features"
	"github.com/dishpatch/dishpatch/internal/inference"
)

// Entry is one scored prediction.
type Entry struct {
	// ID is a unique entry identifier.
	ID string

	// RequestID correlates the entry with API request logs.
	RequestID string

	// Record is the feature record both models scored.
	Record *features.FeatureRecord

	// Model outputs.
	EtaMinutes       float64
	DelayProbability float64
	DelayLabel       inference.DelayLabel

	// LatencyMs is the end-to-end prediction latency in milliseconds.
	LatencyMs float64

	// CreatedAt is when the prediction was served.
	CreatedAt time.Time
}

// Store persists prediction entries.
type Store interface {
	Insert(ctx context.Context, entry *Entry) error
}
