package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Storage is implemented by every backend. Per-domain storages are
// obtained from the concrete backend.
type Storage interface {
	// Close закрывает соединение (для Postgres)
	Close() error
}

// User is an account that can sign in with email and password.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UsersStorage: учётные записи
type UsersStorage interface {
	// CreateUser stores a new user. Returns ErrEmailTaken on duplicates.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByEmail returns ErrNotFound when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	GetUser(ctx context.Context, id string) (*User, error)
}

// Profile mirrors a user's public identity.
type Profile struct {
	ID        string // same as User.ID
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfilesStorage: профили пользователей
type ProfilesStorage interface {
	// UpsertProfile creates the profile or refreshes its email.
	UpsertProfile(ctx context.Context, profile Profile) (Profile, error)

	GetProfile(ctx context.Context, id string) (*Profile, error)
}

// Plan is a user's week plan header.
type Plan struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
}

// PlanItem is one stored day of a plan. Nil fields are NULL columns.
type PlanItem struct {
	PlanID   string
	DOW      int
	Title    *string
	ImageURL *string
	Color    *string
}

// PlansStorage: планы и их дни
type PlansStorage interface {
	// LatestPlan returns the most recently created plan of the user.
	// bool=false means the user has no plan yet.
	LatestPlan(ctx context.Context, userID string) (Plan, bool, error)

	CreatePlan(ctx context.Context, userID, title string) (Plan, error)

	ListItems(ctx context.Context, planID string) ([]PlanItem, error)

	// DeleteItems removes every item of the plan.
	DeleteItems(ctx context.Context, planID string) error

	// InsertItems adds items in one batch. A duplicate dow fails the batch.
	InsertItems(ctx context.Context, planID string, items []PlanItem) error

	// ReplaceItems atomically swaps the plan's items for the given set.
	ReplaceItems(ctx context.Context, planID string, items []PlanItem) error
}

// PreferencesRecord is the stored preferences document of a user.
type PreferencesRecord struct {
	UserID  string
	Payload []byte // JSON
	SavedAt time.Time
}

// PreferencesStorage: пользовательские предпочтения
type PreferencesStorage interface {
	// GetPreferences returns bool=false when nothing was saved yet.
	GetPreferences(ctx context.Context, userID string) (PreferencesRecord, bool, error)

	UpsertPreferences(ctx context.Context, userID string, payload []byte) (PreferencesRecord, error)
}

// Image is an uploaded slot picture.
type Image struct {
	ID          string
	UserID      string
	ContentType string
	ObjectKey   *string // S3 object key (NULL in local mode)
	SizeBytes   int64
	CreatedAt   time.Time
	Data        []byte // local mode only
}

// ImagesStorage: загруженные изображения
type ImagesStorage interface {
	CreateImage(ctx context.Context, image *Image) error

	// GetImage returns ErrNotFound when the id is unknown.
	GetImage(ctx context.Context, id string) (*Image, error)

	DeleteImage(ctx context.Context, id string) error
}
