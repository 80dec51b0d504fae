package files

import (
	"context"
	"io"
)

// Repository port for file metadata rows
type Repository interface {
	Save(ctx context.Context, f *UploadedFile) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*UploadedFile, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// ObjectStore port for the file bytes
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
