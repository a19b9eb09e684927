package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Default on-disk location relative to the home directory
const (
	defaultDirName  = ".console_todo"
	defaultFileName = "todos.json"
)

// State is the persisted form of the todo collection
type State struct {
	NextID int          `json:"next_id"`
	Todos  map[int]Todo `json:"todos"`
}

// Store reads and writes the todo collection at a fixed path
type Store struct {
	path string
}

// NewStore creates a store at an explicit path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore places the data file under ~/.console_todo/todos.json
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return NewStore(filepath.Join(home, defaultDirName, defaultFileName)), nil
}

// Load reads the collection from disk. A missing or unreadable file
// yields an empty collection rather than an error, so a corrupt store
// never blocks the user.
func (s *Store) Load() (State, error) {
	empty := State{NextID: 1, Todos: make(map[int]Todo)}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return empty, nil
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return empty, nil
	}
	if state.Todos == nil {
		state.Todos = make(map[int]Todo)
	}
	if state.NextID < 1 {
		state.NextID = 1
	}
	return state, nil
}

// Save writes the collection atomically: a temp file in the same
// directory is renamed over the target so a crash never leaves a
// half-written store.
func (s *Store) Save(state State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "todos-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.path)
}
