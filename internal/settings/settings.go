// Package settings holds per-user generation preferences: which model to
// use and how much reasoning effort to spend.
package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Closed enumerations for preference values. Unrecognized values fall back
// to defaults rather than erroring.
var (
	AllowedModels = []string{
		"gpt-5-nano",
		"gpt-5-mini",
		"gpt-5",
		"gpt-4o",
		"gpt-4o-mini",
	}
	AllowedEfforts = []string{"minimal", "low", "medium", "high"}
)

const (
	DefaultModel  = "gpt-5-nano"
	DefaultEffort = "minimal"
)

// Prefs selects the generation model and reasoning effort for one user.
type Prefs struct {
	Model  string `json:"model"`
	Effort string `json:"effort"`
}

// Defaults returns the system default preferences.
func Defaults() Prefs {
	return Prefs{Model: DefaultModel, Effort: DefaultEffort}
}

// Normalized replaces unrecognized values with defaults.
func (p Prefs) Normalized() Prefs {
	if !contains(AllowedModels, p.Model) {
		p.Model = DefaultModel
	}
	if !contains(AllowedEfforts, p.Effort) {
		p.Effort = DefaultEffort
	}
	return p
}

func contains(allowed []string, v string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// Store persists per-user preferences. Injected as a dependency so tests
// can substitute an in-memory fake.
type Store interface {
	Get(userID int64) (Prefs, error)
	Set(userID int64, p Prefs) error
}

// FileStore keeps all users' preferences in one JSON file under the base
// directory, keyed by stringified user id.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store at baseDir/settings.json.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{path: filepath.Join(baseDir, "settings.json")}
}

// Get loads one user's preferences. A missing file, missing user or
// unreadable file all yield defaults.
func (s *FileStore) Get(userID int64) (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return Defaults(), err
	}
	p, ok := all[key(userID)]
	if !ok {
		return Defaults(), nil
	}
	return p.Normalized(), nil
}

// Set stores one user's preferences, normalizing unrecognized values.
func (s *FileStore) Set(userID int64, p Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	all[key(userID)] = p.Normalized()

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *FileStore) load() (map[string]Prefs, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Prefs{}, nil
		}
		return nil, err
	}
	all := map[string]Prefs{}
	if err := json.Unmarshal(data, &all); err != nil {
		// Corrupt settings are not worth failing a lookup over.
		return map[string]Prefs{}, nil
	}
	return all, nil
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Cached wraps a Store with an in-process read-through cache keyed by user
// id, invalidated on write. No hidden process-wide singleton: construct one
// and pass it around.
type Cached struct {
	store Store

	mu    sync.RWMutex
	cache map[int64]Prefs
}

// NewCached wraps a backing store with a cache.
func NewCached(store Store) *Cached {
	return &Cached{store: store, cache: make(map[int64]Prefs)}
}

// Get returns cached preferences, falling through to the backing store on
// a miss.
func (c *Cached) Get(userID int64) (Prefs, error) {
	c.mu.RLock()
	p, ok := c.cache[userID]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := c.store.Get(userID)
	if err != nil {
		return Defaults(), err
	}

	c.mu.Lock()
	c.cache[userID] = p
	c.mu.Unlock()
	return p, nil
}

// Set writes through to the backing store and invalidates the cached value.
func (c *Cached) Set(userID int64, p Prefs) error {
	if err := c.store.Set(userID, p); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.cache, userID)
	c.mu.Unlock()
	return nil
}
