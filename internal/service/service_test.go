package service_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"travelog/internal/repository/sqlite"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlite.InitAll(context.Background(),
		sqlite.NewUserRepository(db),
		sqlite.NewCaptionRepository(db),
		sqlite.NewUploadRepository(db),
	))
	return db
}
