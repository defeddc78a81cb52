package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kalambet/jobfill/internal/storage"
)

// ProfileStore defines the storage operations the Manager needs.
// Implemented by storage.Store.
type ProfileStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	SetIfAbsent(key, value string) (bool, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// ErrUnknownField is returned by SetField for keys outside Keys().
var ErrUnknownField = errors.New("unknown profile field")

// Manager provides cached access to the profile blob stored under StorageKey.
type Manager struct {
	store  ProfileStore
	clock  Clock
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.RWMutex
	cached   *Profile
	cachedAt time.Time
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store ProfileStore) *Manager {
	return NewManagerWithClock(store, realClock{}, 60*time.Second)
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store ProfileStore, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		clock:  clock,
		ttl:    ttl,
		logger: slog.Default(),
	}
}

// Seed writes the default profile when none is stored yet. It reports
// whether it wrote; an existing profile is never replaced.
func (m *Manager) Seed() (bool, error) {
	data, err := json.Marshal(Default())
	if err != nil {
		return false, err
	}
	wrote, err := m.store.SetIfAbsent(StorageKey, string(data))
	if err != nil {
		return false, fmt.Errorf("seeding profile: %w", err)
	}
	if wrote {
		m.logger.Info("profile initialized with default data")
	}
	return wrote, nil
}

// Load reads the stored profile without falling back to defaults.
func (m *Manager) Load() (Profile, error) {
	m.mu.RLock()
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		p := *m.cached
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		return *m.cached, nil
	}

	raw, err := m.store.Get(StorageKey)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, fmt.Errorf("decoding profile: %w", err)
	}

	m.cached = &p
	m.cachedAt = m.clock.Now()
	return p, nil
}

// GetProfile returns the stored profile. A missing record is seeded with the
// defaults; unreadable storage or a malformed blob degrades to Default().
func (m *Manager) GetProfile() Profile {
	p, err := m.Load()
	if err == nil {
		return p
	}
	if errors.Is(err, storage.ErrNotFound) {
		if _, seedErr := m.Seed(); seedErr != nil {
			m.logger.Warn("could not seed profile", "error", seedErr)
		}
		return Default()
	}
	m.logger.Warn("profile storage unavailable, using default profile", "error", err)
	return Default()
}

// SetProfile replaces the stored profile and invalidates the cache.
func (m *Manager) SetProfile(p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	m.cached = nil
	return nil
}

// current returns the profile that updates build on. Only a missing record
// falls back to the defaults; any other read error is returned so a write
// never replaces stored data it could not see.
func (m *Manager) current() (Profile, error) {
	p, err := m.Load()
	if errors.Is(err, storage.ErrNotFound) {
		if _, err := m.Seed(); err != nil {
			return Profile{}, err
		}
		return Default(), nil
	}
	return p, err
}

// SetField updates a single profile key, e.g. "email".
func (m *Manager) SetField(key, value string) error {
	f, ok := lookupField(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	p, err := m.current()
	if err != nil {
		return err
	}
	*f.ptr(&p) = value
	return m.SetProfile(p)
}

// SetFields applies several key updates in one write. Unknown keys abort
// the whole update.
func (m *Manager) SetFields(values map[string]string) error {
	p, err := m.current()
	if err != nil {
		return err
	}
	for key, value := range values {
		f, ok := lookupField(key)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
		*f.ptr(&p) = value
	}
	return m.SetProfile(p)
}

// MergeProfile overlays the non-empty fields of partial onto the stored
// profile and returns the result.
func (m *Manager) MergeProfile(partial Profile) (Profile, error) {
	p, err := m.current()
	if err != nil {
		return Profile{}, err
	}
	p = p.Merge(partial)
	if err := m.SetProfile(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Reset restores the default profile.
func (m *Manager) Reset() error {
	return m.SetProfile(Default())
}
