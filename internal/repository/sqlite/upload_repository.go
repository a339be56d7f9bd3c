package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"travelog/internal/domain"
	"travelog/internal/repository"
)

const createUploadsTable = `
CREATE TABLE IF NOT EXISTS uploads (
	id TEXT PRIMARY KEY,
	storage_key TEXT NOT NULL,
	url TEXT NOT NULL,
	original_name TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL,
	size INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_uploads_storage_key ON uploads(storage_key);
`

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) repository.UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUploadsTable); err != nil {
		return fmt.Errorf("create uploads table: %w", err)
	}
	return nil
}

func (r *UploadRepository) Create(ctx context.Context, upload *domain.Upload) error {
	if upload.ID == "" {
		upload.ID = uuid.NewString()
	}
	upload.CreatedAt = time.Now().UTC()

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO uploads (id, storage_key, url, original_name, content_type, size, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		upload.ID,
		upload.StorageKey,
		upload.URL,
		upload.OriginalName,
		upload.ContentType,
		upload.Size,
		upload.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

// GetByKey returns the most recent record for a storage key.
func (r *UploadRepository) GetByKey(ctx context.Context, key string) (*domain.Upload, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, storage_key, url, original_name, content_type, size, created_at
FROM uploads
WHERE storage_key = ?
ORDER BY created_at DESC
LIMIT 1`, key)

	var u domain.Upload
	if err := row.Scan(&u.ID, &u.StorageKey, &u.URL, &u.OriginalName, &u.ContentType, &u.Size, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan upload: %w", err)
	}
	return &u, nil
}
