package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	for _, table := range []string{"reports", "activity_log"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Startup reapplies the schema every time.
	require.NoError(t, db.RunMigrations())
}

// TestReportsTable verifies the reports table constraints
func TestReportsTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	insert := `INSERT INTO reports (id, category, urgency, created_at, status, department) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, insert, "r1", "pothole", "low", 1, "submitted", "Public Works")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "r1", "trash", "low", 2, "submitted", "Public Works")
	require.Error(t, err, "duplicate id should fail")

	var description string
	err = db.QueryRowContext(ctx, `SELECT description FROM reports WHERE id = ?`, "r1").Scan(&description)
	require.NoError(t, err)
	require.Equal(t, "", description)
}
