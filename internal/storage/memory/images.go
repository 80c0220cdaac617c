package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fdg312/weekplan/internal/storage"
	"github.com/google/uuid"
)

// ImagesMemoryStorage: in-memory реализация ImagesStorage
type ImagesMemoryStorage struct {
	mu     sync.RWMutex
	images map[string]storage.Image
}

func NewImagesMemoryStorage() *ImagesMemoryStorage {
	return &ImagesMemoryStorage{images: make(map[string]storage.Image)}
}

func (s *ImagesMemoryStorage) CreateImage(ctx context.Context, image *storage.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	image.CreatedAt = time.Now().UTC()
	s.images[image.ID] = *image
	return nil
}

func (s *ImagesMemoryStorage) GetImage(ctx context.Context, id string) (*storage.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &img, nil
}

func (s *ImagesMemoryStorage) DeleteImage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.images, id)
	return nil
}
