package reference

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository for tests and local development.
type MemoryRepository struct {
	mu     sync.RWMutex
	values map[string][]string
}

// NewMemoryRepository creates a repository seeded with the given column
// values. A nil seed starts empty.
func NewMemoryRepository(seed map[string][]string) *MemoryRepository {
	values := make(map[string][]string, len(seed))
	for column, vs := range seed {
		copied := make([]string, len(vs))
		copy(copied, vs)
		sort.Strings(copied)
		values[column] = copied
	}
	return &MemoryRepository{values: values}
}

// NewDefaultMemoryRepository creates a repository seeded with the canonical
// category sets from the training dataset.
func NewDefaultMemoryRepository() *MemoryRepository {
	return NewMemoryRepository(map[string][]string{
		ColumnWeatherConditions:  {"Cloudy", "Fog", "Sandstorms", "Stormy", "Sunny", "Windy"},
		ColumnRoadTrafficDensity: {"High", "Jam", "Low", "Medium"},
		ColumnTypeOfOrder:        {"Buffet", "Drinks", "Meal", "Snack"},
		ColumnTypeOfVehicle:      {"bicycle", "electric_scooter", "motorcycle", "scooter"},
		ColumnFestival:           {"No", "Yes"},
		ColumnCity:               {"Metropolitian", "Semi-Urban", "Urban"},
		ColumnOrderMonth:         {"2", "3", "4"},
		ColumnAgeBins:            {"18-25", "26-35", "36-45", "46-60"},
	})
}

// DistinctValues returns the distinct values for a reference column.
func (r *MemoryRepository) DistinctValues(_ context.Context, column string) ([]string, error) {
	if !IsKnownColumn(column) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	values, ok := r.values[column]
	if !ok {
		return nil, nil
	}
	copied := make([]string, len(values))
	copy(copied, values)
	return copied, nil
}

// SetValues replaces the values for a column.
func (r *MemoryRepository) SetValues(column string, values []string) {
	copied := make([]string, len(values))
	copy(copied, values)
	sort.Strings(copied)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[column] = copied
}

// Ensure MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)
