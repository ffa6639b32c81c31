package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dishpatch/dishpatch/internal/reference"
)

// RefreshJob warms the reference value cache by re-reading every configured
// column through the reference service. It runs after a history re-ingest or
// on a schedule so API requests rarely pay the database round trip.
type RefreshJob struct {
	config    RefreshConfig
	logger    zerolog.Logger
	reference *reference.Service

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRefreshes    int64
	SuccessfulColumns int64
	FailedColumns     int64

	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config           RefreshConfig
	Logger           zerolog.Logger
	ReferenceService *reference.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Columns) == 0 {
		config = DefaultRefreshConfig()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &RefreshJob{
		config:    config,
		logger:    cfg.Logger,
		reference: cfg.ReferenceService,
		metrics:   &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh operation.
type RefreshResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TotalColumns int
	Successful   int
	Failed       int
	Errors       []RefreshError
}

// RefreshError represents an error refreshing one column.
type RefreshError struct {
	Column string
	Error  string
}

// Run executes the refresh job for all configured columns. The cache is
// invalidated first so every fetch hits the database.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{
		StartTime:    startTime,
		TotalColumns: len(j.config.Columns),
	}

	j.logger.Info().
		Int("total_columns", result.TotalColumns).
		Int("concurrency", j.config.Concurrency).
		Msg("starting reference refresh job")

	j.reference.InvalidateCache()

	columnsChan := make(chan string, len(j.config.Columns))
	resultsChan := make(chan columnResult, len(j.config.Columns))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, columnsChan, resultsChan)
		}()
	}

	for _, column := range j.config.Columns {
		columnsChan <- column
	}
	close(columnsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for cr := range resultsChan {
		if cr.err == nil {
			result.Successful++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, RefreshError{
				Column: cr.column,
				Error:  cr.err.Error(),
			})
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("reference refresh job completed")

	return result
}

type columnResult struct {
	column string
	err    error
}

func (j *RefreshJob) refreshWorker(ctx context.Context, columns <-chan string, results chan<- columnResult) {
	for column := range columns {
		select {
		case <-ctx.Done():
			results <- columnResult{column: column, err: ctx.Err()}
		default:
			results <- columnResult{column: column, err: j.refreshColumn(ctx, column)}
		}
	}
}

func (j *RefreshJob) refreshColumn(ctx context.Context, column string) error {
	columnCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	values, err := j.reference.DistinctValues(columnCtx, column)
	if err != nil {
		j.logger.Error().Err(err).Str("column", column).Msg("column refresh failed")
		return err
	}

	j.logger.Debug().
		Str("column", column).
		Int("values", len(values)).
		Msg("column refreshed")
	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulColumns += int64(result.Successful)
	j.metrics.FailedColumns += int64(result.Failed)
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulColumns:   j.metrics.SuccessfulColumns,
		FailedColumns:       j.metrics.FailedColumns,
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_refreshes":       m.TotalRefreshes,
		"successful_columns":    m.SuccessfulColumns,
		"failed_columns":        m.FailedColumns,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
	}
}
