package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStorage struct {
	objects map[string][]byte
	ensured bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) EnsureBucket(_ context.Context) error {
	s.ensured = true
	return nil
}

func (s *fakeStorage) PutImage(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", errors.New("no such object")
	}
	return "https://cdn.test/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func TestUploadImageStoresAndSigns(t *testing.T) {
	storage := newFakeStorage()
	service := NewService(storage)
	owner := uuid.New()

	body := bytes.NewBufferString("png-bytes")
	image, err := service.UploadImage(context.Background(), owner, "poster.PNG", "image/png", body, int64(body.Len()))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if !storage.ensured {
		t.Fatal("bucket should be ensured before upload")
	}
	if !strings.HasPrefix(image.ObjectKey, "listings/"+owner.String()+"/") {
		t.Fatalf("unexpected object key %q", image.ObjectKey)
	}
	if !strings.HasSuffix(image.ObjectKey, ".png") {
		t.Fatalf("extension should be lowercased, got %q", image.ObjectKey)
	}
	if image.URL == "" {
		t.Fatal("expected a signed url")
	}
	if _, ok := storage.objects[image.ObjectKey]; !ok {
		t.Fatal("object bytes were not stored")
	}
}

func TestUploadImageValidation(t *testing.T) {
	service := NewService(newFakeStorage())

	cases := []struct {
		name  string
		owner uuid.UUID
		body  io.Reader
		size  int64
	}{
		{"nil owner", uuid.Nil, bytes.NewBufferString("x"), 1},
		{"nil body", uuid.New(), nil, 1},
		{"zero size", uuid.New(), bytes.NewBufferString("x"), 0},
		{"oversized", uuid.New(), bytes.NewBufferString("x"), maxImageBytes + 1},
	}

	for _, tc := range cases {
		if _, err := service.UploadImage(context.Background(), tc.owner, "a.jpg", "image/jpeg", tc.body, tc.size); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestDeleteImageRemovesObject(t *testing.T) {
	storage := newFakeStorage()
	service := NewService(storage)
	owner := uuid.New()

	body := bytes.NewBufferString("data")
	image, err := service.UploadImage(context.Background(), owner, "a.jpg", "image/jpeg", body, int64(body.Len()))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := service.DeleteImage(context.Background(), image.ObjectKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := storage.objects[image.ObjectKey]; ok {
		t.Fatal("object should be gone after delete")
	}
}
