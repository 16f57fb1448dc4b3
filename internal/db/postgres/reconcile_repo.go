package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"Snapgram/internal/core/relationships"
)

// recount describes how one counter column is recomputed from its relationship table
type recount struct {
	table     string
	column    string
	source    string
	sourceKey string
}

var recounts = []recount{
	{table: relationships.TablePosts, column: relationships.ColumnLikesCount, source: "likes", sourceKey: "post_id"},
	{table: relationships.TablePosts, column: relationships.ColumnSavesCount, source: "saves", sourceKey: "post_id"},
	{table: relationships.TableUsers, column: relationships.ColumnFollowersCount, source: "follows", sourceKey: "followee_id"},
	{table: relationships.TableUsers, column: relationships.ColumnFolloweesCount, source: "follows", sourceKey: "follower_id"},
	{table: relationships.TableUsers, column: relationships.ColumnPostCount, source: "posts", sourceKey: "creator_id"},
}

type postgresReconcileRepo struct {
	db *sqlx.DB
}

// NewReconcileRepository creates the counter reconciler
func NewReconcileRepository(db *sqlx.DB) relationships.ReconcileRepository {
	return &postgresReconcileRepo{db: db}
}

type driftRow struct {
	RowID    string `db:"id"`
	Stored   int    `db:"stored"`
	Computed int    `db:"computed"`
}

// RecountAll rewrites each drifted counter with one UPDATE per column and
// returns the previous and corrected values.
func (r *postgresReconcileRepo) RecountAll(ctx context.Context) ([]relationships.Drift, error) {
	var drifts []relationships.Drift

	for _, rc := range recounts {
		query := fmt.Sprintf(`
			WITH computed AS (
				SELECT t.id, t.%[2]s AS stored, COUNT(s.%[4]s)::int AS computed
				FROM %[1]s t
				LEFT JOIN %[3]s s ON s.%[4]s = t.id
				GROUP BY t.id, t.%[2]s
			)
			UPDATE %[1]s t
			SET %[2]s = c.computed
			FROM computed c
			WHERE t.id = c.id AND c.stored <> c.computed
			RETURNING t.id, c.stored, c.computed`, rc.table, rc.column, rc.source, rc.sourceKey)

		var rows []driftRow
		if err := r.db.SelectContext(ctx, &rows, query); err != nil {
			return nil, fmt.Errorf("failed to recount %s.%s: %w", rc.table, rc.column, err)
		}

		for _, row := range rows {
			drifts = append(drifts, relationships.Drift{
				Table:    rc.table,
				Column:   rc.column,
				RowID:    row.RowID,
				Stored:   row.Stored,
				Computed: row.Computed,
			})
		}
	}

	return drifts, nil
}
