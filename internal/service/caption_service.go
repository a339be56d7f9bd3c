package service

import (
	"context"
	"strings"
	"time"

	"travelog/internal/domain"
	"travelog/internal/repository"
)

// CaptionInput carries the client supplied fields of a new caption.
type CaptionInput struct {
	Title           string
	Story           string
	VisitedLocation string
	ImageURL        string
	VisitedDate     string
}

// CaptionService creates and lists captions for the authenticated caller.
type CaptionService interface {
	CreateCaption(ctx context.Context, userID string, in CaptionInput) (*domain.Caption, error)
	ListCaptions(ctx context.Context, userID string) ([]domain.Caption, error)
}

type captionService struct {
	captions repository.CaptionRepository
}

func NewCaptionService(captions repository.CaptionRepository) CaptionService {
	return &captionService{captions: captions}
}

func (s *captionService) CreateCaption(ctx context.Context, userID string, in CaptionInput) (*domain.Caption, error) {
	caption := &domain.Caption{
		UserID:          strings.TrimSpace(userID),
		Title:           strings.TrimSpace(in.Title),
		Story:           strings.TrimSpace(in.Story),
		VisitedLocation: strings.TrimSpace(in.VisitedLocation),
		ImageURL:        strings.TrimSpace(in.ImageURL),
	}
	date := strings.TrimSpace(in.VisitedDate)
	if caption.UserID == "" || caption.Title == "" || caption.Story == "" ||
		caption.VisitedLocation == "" || caption.ImageURL == "" || date == "" {
		return nil, domain.ValidationError("All fields are required")
	}

	visited, err := ParseVisitedDate(date)
	if err != nil {
		return nil, domain.ValidationError("visitedDate must be a calendar date")
	}
	caption.VisitedDate = visited

	if err := s.captions.Create(ctx, caption); err != nil {
		return nil, err
	}
	return caption, nil
}

func (s *captionService) ListCaptions(ctx context.Context, userID string) ([]domain.Caption, error) {
	captions, err := s.captions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if captions == nil {
		captions = []domain.Caption{}
	}
	return captions, nil
}

// ParseVisitedDate accepts YYYY-MM-DD or RFC 3339 timestamps.
func ParseVisitedDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
