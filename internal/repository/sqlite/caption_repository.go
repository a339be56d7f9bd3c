package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"travelog/internal/domain"
	"travelog/internal/repository"
)

const createCaptionsTable = `
CREATE TABLE IF NOT EXISTS captions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	story TEXT NOT NULL,
	visited_location TEXT NOT NULL,
	image_url TEXT NOT NULL,
	visited_date DATETIME NOT NULL,
	is_favourite INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_captions_user_id ON captions(user_id);
`

type CaptionRepository struct {
	db *sql.DB
}

func NewCaptionRepository(db *sql.DB) repository.CaptionRepository {
	return &CaptionRepository{db: db}
}

func (r *CaptionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCaptionsTable); err != nil {
		return fmt.Errorf("create captions table: %w", err)
	}
	return nil
}

func (r *CaptionRepository) Create(ctx context.Context, caption *domain.Caption) error {
	if caption.ID == "" {
		caption.ID = uuid.NewString()
	}
	caption.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO captions (id, user_id, title, story, visited_location, image_url, visited_date, is_favourite, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		caption.ID,
		caption.UserID,
		caption.Title,
		caption.Story,
		caption.VisitedLocation,
		caption.ImageURL,
		caption.VisitedDate.UTC(),
		caption.IsFavourite,
		caption.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert caption: %w", err)
	}
	return nil
}

// ListByUser returns the captions of one user, favourites first.
func (r *CaptionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Caption, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, title, story, visited_location, image_url, visited_date, is_favourite, created_at
FROM captions
WHERE user_id = ?
ORDER BY is_favourite DESC, created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query captions: %w", err)
	}
	defer rows.Close()

	captions := make([]domain.Caption, 0)
	for rows.Next() {
		var c domain.Caption
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Title,
			&c.Story,
			&c.VisitedLocation,
			&c.ImageURL,
			&c.VisitedDate,
			&c.IsFavourite,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan caption: %w", err)
		}
		captions = append(captions, c)
	}

	return captions, rows.Err()
}
