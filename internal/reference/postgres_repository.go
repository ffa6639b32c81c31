package reference

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository reads reference categories from the delivery_history
// table. Column names are interpolated into the query, so they are checked
// against the served-column allow list first.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL reference repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// DistinctValues returns the distinct non-null values for a reference column.
func (r *PostgresRepository) DistinctValues(ctx context.Context, column string) ([]string, error) {
	if !IsKnownColumn(column) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT %s
		FROM delivery_history
		WHERE %s IS NOT NULL
		ORDER BY %s
	`, column, column, column)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s value: %w", column, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return values, nil
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
