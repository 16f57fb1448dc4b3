package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"Snapgram/internal/core/relationships"
)

// counterColumns whitelists the (table, column) pairs that may be adjusted;
// both end up in the SQL text.
var counterColumns = map[string]map[string]bool{
	relationships.TablePosts: {
		relationships.ColumnLikesCount: true,
		relationships.ColumnSavesCount: true,
	},
	relationships.TableUsers: {
		relationships.ColumnFollowersCount: true,
		relationships.ColumnFolloweesCount: true,
		relationships.ColumnPostCount:      true,
	},
}

type postgresCounterRepo struct {
	db *sqlx.DB
}

// NewCounterRepository creates the atomic counter store
func NewCounterRepository(db *sqlx.DB) relationships.CounterStore {
	return &postgresCounterRepo{db: db}
}

// Increment adds amount in a single statement so concurrent toggles can't lose updates
func (r *postgresCounterRepo) Increment(ctx context.Context, c relationships.Counter, amount int) error {
	return r.adjust(ctx, c, fmt.Sprintf("%[1]s = %[1]s + $2", c.Column), amount)
}

// Decrement subtracts amount, flooring at zero
func (r *postgresCounterRepo) Decrement(ctx context.Context, c relationships.Counter, amount int) error {
	return r.adjust(ctx, c, fmt.Sprintf("%[1]s = GREATEST(%[1]s - $2, 0)", c.Column), amount)
}

func (r *postgresCounterRepo) adjust(ctx context.Context, c relationships.Counter, set string, amount int) error {
	if !counterColumns[c.Table][c.Column] {
		return fmt.Errorf("unknown counter %s.%s", c.Table, c.Column)
	}
	if amount < 0 {
		return fmt.Errorf("counter amount must be non-negative, got %d", amount)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1`, c.Table, set)
	result, err := r.db.ExecContext(ctx, query, c.RowID, amount)
	if err != nil {
		return fmt.Errorf("failed to update %s.%s: %w", c.Table, c.Column, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return relationships.ErrSubjectNotFound
	}
	return nil
}
