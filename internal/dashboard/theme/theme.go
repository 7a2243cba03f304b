// Package theme holds the dark/light preference passed explicitly to
// presentational code.
package theme

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// SystemDefault is used when no preference has been stored.
const SystemDefault = Light

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Light, Dark:
		return m, nil
	default:
		return "", fmt.Errorf("unknown theme mode %q", s)
	}
}

// Store persists the preference between runs.
type Store interface {
	Load() (Mode, bool, error)
	Save(Mode) error
}

// Theme is the current mode. It changes only through Toggle.
type Theme struct {
	mu    sync.RWMutex
	mode  Mode
	store Store
}

// New initialises the theme from store, falling back to SystemDefault
// when nothing valid is stored. store may be nil.
func New(store Store) (*Theme, error) {
	t := &Theme{mode: SystemDefault, store: store}
	if store == nil {
		return t, nil
	}

	mode, ok, err := store.Load()
	if err != nil {
		return t, fmt.Errorf("failed to load theme preference: %w", err)
	}
	if ok {
		t.mode = mode
	}
	return t, nil
}

func (t *Theme) Mode() Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

func (t *Theme) IsDark() bool {
	return t.Mode() == Dark
}

// Toggle flips the mode and persists it.
func (t *Theme) Toggle() (Mode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := Dark
	if t.mode == Dark {
		next = Light
	}
	t.mode = next

	if t.store != nil {
		if err := t.store.Save(next); err != nil {
			return next, fmt.Errorf("failed to save theme preference: %w", err)
		}
	}
	return next, nil
}

// FileStore keeps the mode as a single word in a file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reports false when the file is missing or holds an unknown mode.
func (s *FileStore) Load() (Mode, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	mode, err := ParseMode(string(data))
	if err != nil {
		return "", false, nil
	}
	return mode, true, nil
}

func (s *FileStore) Save(m Mode) error {
	return os.WriteFile(s.Path, []byte(string(m)+"\n"), 0o644)
}
