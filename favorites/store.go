package favorites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/dirname/HistoryOfEverything/events"
)

// FavoritesChangedType identifies favorite-set changes on the app bus.
const FavoritesChangedType events.Type = "favorites.changed"

// FavoritesChanged is published after a toggle, carrying the new set.
type FavoritesChanged struct {
	IDs []string
}

// Type implements events.Event.
func (FavoritesChanged) Type() events.Type { return FavoritesChangedType }

// Store persists the set of favorited entry ids as a JSON file. Order of
// favoriting is preserved. Not safe for concurrent use; all access happens
// on the update thread.
type Store struct {
	path string
	ids  []string
	set  map[string]bool
	bus  *events.Bus
	log  *logrus.Entry
}

// NewStore creates a store backed by the file at path, publishing changes
// on bus. A nil bus drops the events.
func NewStore(path string, bus *events.Bus) *Store {
	return &Store{
		path: path,
		set:  make(map[string]bool),
		bus:  bus,
		log:  logrus.WithField("component", "favorites"),
	}
}

// Load reads the favorites file. A missing file leaves the store empty and
// is not an error.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read favorites: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("failed to parse favorites %s: %w", s.path, err)
	}

	s.ids = s.ids[:0]
	s.set = make(map[string]bool)
	for _, id := range ids {
		if id == "" || s.set[id] {
			continue
		}
		s.set[id] = true
		s.ids = append(s.ids, id)
	}
	return nil
}

// Save writes the favorites file, creating its directory if needed.
func (s *Store) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create favorites directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(s.ids, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	return nil
}

// Contains reports whether id is favorited.
func (s *Store) Contains(id string) bool {
	return s.set[id]
}

// IDs returns the favorited ids in the order they were added.
func (s *Store) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Toggle flips the favorite state of id, persists the set and publishes a
// change event. It returns the new state. Persistence failures are logged
// and do not roll the toggle back.
func (s *Store) Toggle(id string) bool {
	if s.set[id] {
		delete(s.set, id)
		for i, existing := range s.ids {
			if existing == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
	} else {
		s.set[id] = true
		s.ids = append(s.ids, id)
	}

	if err := s.Save(); err != nil {
		s.log.WithError(err).Warn("failed to persist favorites")
	}
	if s.bus != nil {
		s.bus.Emit(FavoritesChanged{IDs: s.IDs()})
	}
	return s.set[id]
}
