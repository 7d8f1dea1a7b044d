package character

// Store exposes character retrieval for handlers and sessions.
type Store interface {
	List() []Character
	FindByID(id ID) (Character, bool)
}

// MemoryStore implements Store over an immutable in-memory slice.
type MemoryStore struct {
	items []Character
}

// NewMemoryStore validates the supplied roster and returns a MemoryStore.
// Validation runs here so a broken table fails at startup, not mid-session.
func NewMemoryStore(items []Character) (*MemoryStore, error) {
	if err := Validate(items); err != nil {
		return nil, err
	}
	return &MemoryStore{items: append([]Character(nil), items...)}, nil
}

// List returns the fixed character roster.
func (s *MemoryStore) List() []Character {
	return append([]Character(nil), s.items...)
}

// FindByID looks up a character by identifier.
func (s *MemoryStore) FindByID(id ID) (Character, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Character{}, false
}
