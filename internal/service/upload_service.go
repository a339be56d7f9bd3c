package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"travelog/internal/domain"
	"travelog/internal/repository"
	"travelog/internal/storage"
)

// ImageFile is one uploaded file as received by the transport layer.
type ImageFile struct {
	Body         io.Reader
	OriginalName string
	MimeType     string
	Size         int64
}

// UploadService validates image uploads and hands them to storage.
type UploadService interface {
	StoreImage(ctx context.Context, file *ImageFile) (string, error)
}

type uploadService struct {
	store   storage.Service
	uploads repository.UploadRepository
	logger  logrus.FieldLogger
	now     func() time.Time
}

func NewUploadService(store storage.Service, uploads repository.UploadRepository, logger logrus.FieldLogger, now func() time.Time) UploadService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &uploadService{store: store, uploads: uploads, logger: logger, now: now}
}

func (s *uploadService) StoreImage(ctx context.Context, file *ImageFile) (string, error) {
	if file == nil || file.Body == nil {
		return "", domain.ValidationError("No image uploaded")
	}
	if !strings.HasPrefix(strings.ToLower(file.MimeType), "image/") {
		return "", domain.ValidationError("Only image files are allowed")
	}

	key, err := s.freeKey(ctx, s.now(), file.OriginalName)
	if err != nil {
		return "", err
	}
	url, err := s.store.Put(ctx, storage.Object{
		Key:         key,
		Body:        file.Body,
		ContentType: file.MimeType,
		Size:        file.Size,
	})
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	record := &domain.Upload{
		StorageKey:   key,
		URL:          url,
		OriginalName: file.OriginalName,
		ContentType:  file.MimeType,
		Size:         file.Size,
	}
	if err := s.uploads.Create(ctx, record); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.WithError(delErr).WithField("key", key).Warn("remove orphaned upload")
		}
		return "", fmt.Errorf("record upload: %w", err)
	}

	return url, nil
}

const maxKeyAttempts = 16

// freeKey picks the first storage key with no upload record, stepping the
// timestamp forward a millisecond at a time so an earlier image is never
// overwritten. Concurrent uploads in the same millisecond can still collide.
func (s *uploadService) freeKey(ctx context.Context, ts time.Time, originalName string) (string, error) {
	for i := 0; i < maxKeyAttempts; i++ {
		key := storageKey(ts.Add(time.Duration(i)*time.Millisecond), originalName)
		_, err := s.uploads.GetByKey(ctx, key)
		if errors.Is(err, domain.ErrNotFound) {
			return key, nil
		}
		if err != nil {
			return "", fmt.Errorf("check upload key: %w", err)
		}
	}
	return "", fmt.Errorf("no free upload key after %d attempts", maxKeyAttempts)
}

// storageKey derives the stored name: upload time in unix millis plus the
// original extension, case preserved.
func storageKey(ts time.Time, originalName string) string {
	return strconv.FormatInt(ts.UnixMilli(), 10) + filepath.Ext(filepath.Base(originalName))
}
