package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation error")

const (
	signedURLTTL   = 5 * time.Minute
	maxImageBytes  = 10 << 20
	imageKeyPrefix = "listings"
)

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutImage(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service stores listing images in object storage. Listings reference
// the returned object keys, URLs are signed per read.
type Service struct {
	storage ObjectStorage
}

type Image struct {
	ObjectKey string
	URL       string
}

func NewService(storage ObjectStorage) *Service {
	return &Service{storage: storage}
}

func (s *Service) UploadImage(ctx context.Context, ownerID uuid.UUID, fileName, contentType string, body io.Reader, size int64) (Image, error) {
	if ownerID == uuid.Nil || body == nil || size <= 0 || size > maxImageBytes {
		return Image{}, ErrValidation
	}
	if s.storage == nil {
		return Image{}, fmt.Errorf("media storage is not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Image{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildImageObjectKey(ownerID, fileName)
	if err != nil {
		return Image{}, fmt.Errorf("build object key: %w", err)
	}

	if err := s.storage.PutImage(ctx, objectKey, body, size, strings.TrimSpace(contentType)); err != nil {
		return Image{}, fmt.Errorf("put object: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return Image{}, fmt.Errorf("presign image url: %w", err)
	}

	return Image{ObjectKey: objectKey, URL: url}, nil
}

func (s *Service) SignImageURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", ErrValidation
	}
	if s.storage == nil {
		return "", fmt.Errorf("media storage is not configured")
	}
	return s.storage.PresignGet(ctx, objectKey, signedURLTTL)
}

func (s *Service) DeleteImage(ctx context.Context, objectKey string) error {
	if s.storage == nil {
		return fmt.Errorf("media storage is not configured")
	}
	return s.storage.Delete(ctx, objectKey)
}

func buildImageObjectKey(ownerID uuid.UUID, fileName string) (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = ".bin"
	}

	return fmt.Sprintf("%s/%s/%s%s", imageKeyPrefix, ownerID, hex.EncodeToString(suffix), ext), nil
}
