package database

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL and resets the schema
func setupTestDB(t *testing.T) Store {
	connStr := os.Getenv("TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewPostgresDB(ctx, connStr, PoolOptions{MaxOpenConns: 10})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(ctx))

	_, err = db.ExecContext(ctx, "TRUNCATE messages, offers, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to clean up test data: %v", err)
	}

	for i := 1; i <= 5; i++ {
		_, err = db.ExecContext(ctx,
			`INSERT INTO users (first_name, last_name, email, password) VALUES ($1, $2, $3, 'x')`,
			"User", string(rune('A'+i-1)), "user"+string(rune('0'+i))+"@example.com")
		require.NoError(t, err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO offers (user_id, title) VALUES (1, 'Help with Go')`)
	require.NoError(t, err)

	return db
}

func TestPostgresDB(t *testing.T) {
	testStore(t, setupTestDB)
}

func TestPostgresForeignKeyViolation(t *testing.T) {
	db := setupTestDB(t)
	ref := int64(4242)

	_, err := db.Append(context.Background(), newMessage(1, 2, "x", &ref))

	var fkErr *ForeignKeyError
	require.ErrorAs(t, err, &fkErr)
	assert.Equal(t, "offer_id", fkErr.Column)
}

func TestNewPostgresDBInvalidConnection(t *testing.T) {
	db, err := NewPostgresDB(context.Background(), "invalid connection string", PoolOptions{})
	assert.Error(t, err)
	assert.Nil(t, db)
}
