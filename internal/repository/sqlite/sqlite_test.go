package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelog/internal/domain"
	"travelog/internal/repository/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, sqlite.InitAll(ctx,
		sqlite.NewUserRepository(db),
		sqlite.NewCaptionRepository(db),
		sqlite.NewUploadRepository(db),
	))
	return db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{FullName: "Ann", Email: "ann@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.FullName)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{FullName: "A", Email: "dup@x.com", PasswordHash: "h1"}))
	err := repo.Create(ctx, &domain.User{FullName: "B", Email: "dup@x.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUserRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCaptionRepository_ListIsolationAndOrder(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewCaptionRepository(db)
	ctx := context.Background()
	visited := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	newCaption := func(userID, title string, fav bool) *domain.Caption {
		return &domain.Caption{
			UserID:          userID,
			Title:           title,
			Story:           "story",
			VisitedLocation: "Bali",
			ImageURL:        "http://localhost/uploads/1.png",
			VisitedDate:     visited,
			IsFavourite:     fav,
		}
	}

	require.NoError(t, repo.Create(ctx, newCaption("alice", "first", false)))
	require.NoError(t, repo.Create(ctx, newCaption("alice", "favourite", true)))
	require.NoError(t, repo.Create(ctx, newCaption("bob", "bobs", false)))

	alice, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, "favourite", alice[0].Title)
	assert.Equal(t, "first", alice[1].Title)
	for _, c := range alice {
		assert.Equal(t, "alice", c.UserID)
		assert.True(t, c.VisitedDate.Equal(visited))
	}

	bob, err := repo.ListByUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Equal(t, "bobs", bob[0].Title)
}

func TestCaptionRepository_ListEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewCaptionRepository(db)

	captions, err := repo.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, captions)
	assert.Empty(t, captions)
}

func TestCaptionRepository_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM captions").
		WithArgs("alice").
		WillReturnError(errors.New("database is locked"))

	repo := sqlite.NewCaptionRepository(db)
	_, err = repo.ListByUser(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query captions")
	assert.Equal(t, domain.KindServer, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("UNIQUE constraint failed: users.email"))

	repo := sqlite.NewUserRepository(db)
	err = repo.Create(context.Background(), &domain.User{FullName: "A", Email: "a@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUploadRepository(db)
	ctx := context.Background()

	upload := &domain.Upload{
		StorageKey:   "1700000000000.png",
		URL:          "http://localhost:8000/uploads/1700000000000.png",
		OriginalName: "beach.png",
		ContentType:  "image/png",
		Size:         42,
	}
	require.NoError(t, repo.Create(ctx, upload))

	got, err := repo.GetByKey(ctx, "1700000000000.png")
	require.NoError(t, err)
	assert.Equal(t, upload.ID, got.ID)
	assert.Equal(t, int64(42), got.Size)

	_, err = repo.GetByKey(ctx, "missing.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
