package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for blob storage of uploaded clips.
type FileStorage interface {
	// PutObject stores data under objectKey and returns a URL the object can be
	// fetched from.
	PutObject(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)

	// GeneratePresignedDownloadURL returns a URL for viewing the object. For
	// backends with public objects it is the public URL and expires is ignored.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
