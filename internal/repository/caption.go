package repository

import (
	"context"

	"travelog/internal/domain"
)

// CaptionRepository exposes persistence operations for captions.
type CaptionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, caption *domain.Caption) error
	ListByUser(ctx context.Context, userID string) ([]domain.Caption, error)
}

// UploadRepository keeps metadata about stored images.
type UploadRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, upload *domain.Upload) error
	GetByKey(ctx context.Context, key string) (*domain.Upload, error)
}
