package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/weekplan/internal/storage"
	"github.com/google/uuid"
)

type UsersMemoryStorage struct {
	mu      sync.RWMutex
	byID    map[string]storage.User
	byEmail map[string]string // lower(email) -> id
}

func NewUsersMemoryStorage() *UsersMemoryStorage {
	return &UsersMemoryStorage{
		byID:    make(map[string]storage.User),
		byEmail: make(map[string]string),
	}
}

func (s *UsersMemoryStorage) CreateUser(ctx context.Context, user *storage.User) error {
	key := strings.ToLower(strings.TrimSpace(user.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[key]; ok {
		return storage.ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = key
	user.CreatedAt = time.Now().UTC()

	s.byID[user.ID] = *user
	s.byEmail[key] = user.ID
	return nil
}

func (s *UsersMemoryStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *UsersMemoryStorage) GetUser(ctx context.Context, id string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

type ProfilesMemoryStorage struct {
	mu       sync.RWMutex
	profiles map[string]storage.Profile
}

func NewProfilesMemoryStorage() *ProfilesMemoryStorage {
	return &ProfilesMemoryStorage{profiles: make(map[string]storage.Profile)}
}

func (s *ProfilesMemoryStorage) UpsertProfile(ctx context.Context, in storage.Profile) (storage.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := s.profiles[in.ID]
	if !ok {
		existing = storage.Profile{ID: in.ID, CreatedAt: now}
	}
	existing.Email = in.Email
	existing.UpdatedAt = now

	s.profiles[in.ID] = existing
	return existing, nil
}

func (s *ProfilesMemoryStorage) GetProfile(ctx context.Context, id string) (*storage.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}
