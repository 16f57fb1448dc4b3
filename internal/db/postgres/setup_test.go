package postgres

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"Snapgram/internal/db/migrations"
)

// setupTestDB connects to TEST_DATABASE_URL and runs migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	raw, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, migrations.Up(raw), "Failed to run migrations")

	db := sqlx.NewDb(raw, "postgres")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// createTestUser inserts a user and removes it (and everything cascading from it) after the test
func createTestUser(t *testing.T, db *sqlx.DB, username string) string {
	t.Helper()
	id := uuid.NewString()
	username = username + "_" + id[:8]
	_, err := db.Exec(`INSERT INTO users (id, name, username, email) VALUES ($1, $2, $3, $4)`,
		id, username, username, username+"@example.com")
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func createTestPost(t *testing.T, db *sqlx.DB, creatorID, caption string) string {
	t.Helper()
	var id string
	err := db.QueryRow(`INSERT INTO posts (creator_id, caption) VALUES ($1, $2) RETURNING id`,
		creatorID, caption).Scan(&id)
	require.NoError(t, err)
	return id
}

func readCounter(t *testing.T, db *sqlx.DB, table, column, id string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT `+column+` FROM `+table+` WHERE id = $1`, id))
	return n
}
