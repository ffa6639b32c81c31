// Package worker provides background job processing for Dishpatch.
package worker

import (
	"time"

	"github.com/dishpatch/dishpatch/internal/reference"
)

// RefreshConfig holds configuration for the reference refresh job.
type RefreshConfig struct {
	// Columns are the reference columns to warm. If empty, all known
	// columns are refreshed.
	Columns []string

	// Concurrency is the number of concurrent column fetches.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each column fetch.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Columns:     reference.Columns(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}
