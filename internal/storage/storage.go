package storage

import (
	"context"
	"io"
)

// Object describes a blob handed to a storage backend.
type Object struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// Service stores uploaded images and resolves their public URLs.
type Service interface {
	Put(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
}
