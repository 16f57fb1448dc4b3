package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"Snapgram/internal/core/relationships"
)

// relationshipTable maps a relationship kind onto its table and pair columns
type relationshipTable struct {
	name  string
	owner string
	actor string
}

var relationshipTables = map[relationships.Kind]relationshipTable{
	relationships.KindLike:   {name: "likes", owner: "post_id", actor: "user_id"},
	relationships.KindSave:   {name: "saves", owner: "post_id", actor: "user_id"},
	relationships.KindFollow: {name: "follows", owner: "followee_id", actor: "follower_id"},
}

func tableFor(kind relationships.Kind) (relationshipTable, error) {
	t, ok := relationshipTables[kind]
	if !ok {
		return relationshipTable{}, fmt.Errorf("unknown relationship kind %q", kind)
	}
	return t, nil
}

type postgresRelationshipRepo struct {
	db *sqlx.DB
}

// NewRelationshipRepository creates the likes/saves/follows repository
func NewRelationshipRepository(db *sqlx.DB) relationships.Repository {
	return &postgresRelationshipRepo{db: db}
}

// Find returns the row for the pair, or ErrNotFound
func (r *postgresRelationshipRepo) Find(ctx context.Context, kind relationships.Kind, ownerID, actorID string) (*relationships.Relationship, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, %[2]s AS owner_id, %[3]s AS actor_id, created_at
		FROM %[1]s
		WHERE %[2]s = $1 AND %[3]s = $2
		LIMIT 1`, t.name, t.owner, t.actor)

	var rel relationships.Relationship
	err = r.db.GetContext(ctx, &rel, query, ownerID, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, relationships.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", kind, err)
	}

	rel.Kind = kind
	return &rel, nil
}

// Create inserts the pair. The unique constraint on the pair turns a lost
// race into ErrAlreadyExists.
func (r *postgresRelationshipRepo) Create(ctx context.Context, kind relationships.Kind, ownerID, actorID string) (*relationships.Relationship, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s)
		VALUES ($1, $2)
		RETURNING id, %[2]s AS owner_id, %[3]s AS actor_id, created_at`, t.name, t.owner, t.actor)

	var rel relationships.Relationship
	err = r.db.GetContext(ctx, &rel, query, ownerID, actorID)
	switch {
	case err == nil:
	case isUniqueViolation(err):
		return nil, relationships.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return nil, relationships.ErrSubjectNotFound
	case isCheckViolation(err, "chk_no_self_follow"):
		return nil, relationships.ErrSelfFollow
	default:
		return nil, fmt.Errorf("failed to insert %s: %w", kind, err)
	}

	rel.Kind = kind
	return &rel, nil
}

// Delete removes the row by ID. Returns ErrNotFound when a concurrent
// toggle already removed it, so the caller doesn't decrement twice.
func (r *postgresRelationshipRepo) Delete(ctx context.Context, kind relationships.Kind, id string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.name), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return relationships.ErrNotFound
	}
	return nil
}
