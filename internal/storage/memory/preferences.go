package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fdg312/weekplan/internal/storage"
)

type PreferencesMemoryStorage struct {
	mu      sync.RWMutex
	records map[string]storage.PreferencesRecord
}

func NewPreferencesMemoryStorage() *PreferencesMemoryStorage {
	return &PreferencesMemoryStorage{records: make(map[string]storage.PreferencesRecord)}
}

func (s *PreferencesMemoryStorage) GetPreferences(ctx context.Context, userID string) (storage.PreferencesRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return storage.PreferencesRecord{}, false, nil
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	return rec, true, nil
}

func (s *PreferencesMemoryStorage) UpsertPreferences(ctx context.Context, userID string, payload []byte) (storage.PreferencesRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := storage.PreferencesRecord{
		UserID:  userID,
		Payload: append([]byte(nil), payload...),
		SavedAt: time.Now().UTC(),
	}
	s.records[userID] = rec
	return rec, nil
}
