package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalService writes objects into a directory served by the HTTP layer.
type LocalService struct {
	dir     string
	baseURL string
}

// NewLocalService creates the upload directory if needed. Objects are exposed
// as <baseURL>/uploads/<key>.
func NewLocalService(dir, baseURL string) (*LocalService, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalService{
		dir:     filepath.Clean(dir),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Dir is the directory objects are written to.
func (s *LocalService) Dir() string { return s.dir }

func (s *LocalService) Put(ctx context.Context, obj Object) (string, error) {
	path, err := s.pathFor(obj.Key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file %s: %w", path, err)
	}
	_, err = io.Copy(f, obj.Body)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write file %s: %w", path, err)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close file %s: %w", path, closeErr)
	}

	return s.baseURL + "/uploads/" + url.PathEscape(obj.Key), nil
}

func (s *LocalService) Delete(_ context.Context, key string) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
	return nil
}

func (s *LocalService) pathFor(key string) (string, error) {
	clean := filepath.Base(filepath.Clean("/" + key))
	if clean == "" || clean == "." || clean == "/" || clean != key {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

var _ Service = (*LocalService)(nil)
