package storage

import (
	"context"
	"log"
	"os"
	"time"
)

// fallbackStorage writes to the primary store and, when that fails, to a
// local directory so the upload is never lost.
type fallbackStorage struct {
	primary FileStorage
	local   *LocalStorage
}

// WithFallback wraps primary so failed writes land in local.
func WithFallback(primary FileStorage, local *LocalStorage) FileStorage {
	return &fallbackStorage{primary: primary, local: local}
}

// PutObject tries the primary store first and keeps the clip locally when
// that fails.
func (s *fallbackStorage) PutObject(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	u, err := s.primary.PutObject(ctx, objectKey, data, contentType)
	if err == nil {
		return u, nil
	}
	log.Printf("WARN: Primary blob store failed for '%s', keeping it locally: %v", objectKey, err)
	return s.local.PutObject(ctx, objectKey, data, contentType)
}

func (s *fallbackStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if p, err := s.local.Path(objectKey); err == nil {
		if _, statErr := os.Stat(p); statErr == nil {
			return s.local.URL(objectKey), nil
		}
	}
	return s.primary.GeneratePresignedDownloadURL(ctx, objectKey, expires)
}

func (s *fallbackStorage) DeleteObject(ctx context.Context, objectKey string) error {
	if err := s.local.DeleteObject(ctx, objectKey); err != nil {
		log.Printf("WARN: Failed to delete local copy of '%s': %v", objectKey, err)
	}
	return s.primary.DeleteObject(ctx, objectKey)
}
