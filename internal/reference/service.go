package reference

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the reference service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL is how long column values are cached (default: 10 minutes).
	// The dataset only changes when history is re-ingested, so a long TTL
	// is fine.
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale values on repository errors
	// (default: 24 hours).
	StaleIfErrorTTL time.Duration
}

// Service provides cached access to reference categories. Reads are lock
// shared and safe for concurrent use; the repository is only hit on cache
// misses.
type Service struct {
	repo            Repository
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu    sync.RWMutex
	cache map[string]*cachedColumn
}

type cachedColumn struct {
	values    []string
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new reference service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 24 * time.Hour
	}

	return &Service{
		repo:            cfg.Repository,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		cache:           make(map[string]*cachedColumn),
	}
}

// DistinctValues returns the distinct values for a reference column, from
// cache when fresh.
func (s *Service) DistinctValues(ctx context.Context, column string) ([]string, error) {
	if !IsKnownColumn(column) {
		return nil, ErrUnknownColumn
	}

	s.mu.RLock()
	if cached, ok := s.cache[column]; ok && time.Now().Before(cached.expiresAt) {
		values := cached.values
		s.mu.RUnlock()
		return values, nil
	}
	s.mu.RUnlock()

	return s.fetch(ctx, column)
}

// AgeBins returns the age-bin labels used by the derivation engine.
func (s *Service) AgeBins(ctx context.Context) ([]string, error) {
	return s.DistinctValues(ctx, ColumnAgeBins)
}

// fetch loads a column from the repository and updates the cache.
func (s *Service) fetch(ctx context.Context, column string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check under the write lock.
	if cached, ok := s.cache[column]; ok && time.Now().Before(cached.expiresAt) {
		return cached.values, nil
	}

	values, err := s.repo.DistinctValues(ctx, column)
	if err != nil {
		s.logger.Error().Err(err).Str("column", column).Msg("failed to load reference column")

		if cached, ok := s.cache[column]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Str("column", column).
					Time("fetched_at", cached.fetchedAt).
					Msg("serving stale reference values due to repository error")
				return cached.values, nil
			}
		}

		return nil, ErrUnavailable
	}

	now := time.Now()
	s.cache[column] = &cachedColumn{
		values:    values,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	return values, nil
}

// InvalidateCache clears all cached columns, forcing a repository reload on
// next access.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedColumn)
}

// CacheStats contains reference cache statistics.
type CacheStats struct {
	Columns      int
	FreshColumns int
}

// Stats returns cache statistics for the ops endpoints.
func (s *Service) Stats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	fresh := 0
	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		}
	}
	return CacheStats{
		Columns:      len(s.cache),
		FreshColumns: fresh,
	}
}
