package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/aimage/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestDB connects to an in-memory database with a unique table name.
func setupTestDB(t *testing.T) (*sqlite.DB, string) {
	t.Helper()

	tableName := fmt.Sprintf("images_%s", getRandomString(t))

	db, err := sqlite.Connect(context.Background(), ":memory:", tableName)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	return db, tableName
}

// setupTestStore returns a migrated store.
func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	db, _ := setupTestDB(t)
	require.NoError(t, db.Migrate(context.Background()), "failed to migrate")

	return db.Store()
}
