package reference

import "context"

// Repository defines the interface for reference dataset storage.
type Repository interface {
	// DistinctValues returns the distinct non-null values observed for a
	// reference column, sorted ascending.
	DistinctValues(ctx context.Context, column string) ([]string, error)
}
