package memory

// MemoryStorage: in-memory реализация всех хранилищ (dev и тесты)
type MemoryStorage struct {
	users       *UsersMemoryStorage
	profiles    *ProfilesMemoryStorage
	plans       *PlansMemoryStorage
	preferences *PreferencesMemoryStorage
	images      *ImagesMemoryStorage
}

// New создаёт пустой MemoryStorage
func New() *MemoryStorage {
	return &MemoryStorage{
		users:       NewUsersMemoryStorage(),
		profiles:    NewProfilesMemoryStorage(),
		plans:       NewPlansMemoryStorage(),
		preferences: NewPreferencesMemoryStorage(),
		images:      NewImagesMemoryStorage(),
	}
}

func (m *MemoryStorage) Close() error {
	// no-op для memory
	return nil
}

func (m *MemoryStorage) GetUsersStorage() *UsersMemoryStorage {
	return m.users
}

func (m *MemoryStorage) GetProfilesStorage() *ProfilesMemoryStorage {
	return m.profiles
}

func (m *MemoryStorage) GetPlansStorage() *PlansMemoryStorage {
	return m.plans
}

func (m *MemoryStorage) GetPreferencesStorage() *PreferencesMemoryStorage {
	return m.preferences
}

func (m *MemoryStorage) GetImagesStorage() *ImagesMemoryStorage {
	return m.images
}
