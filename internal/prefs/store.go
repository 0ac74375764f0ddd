package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Snapshot schema versioning for forward-compatibility.
const snapshotVersion = 1

type snapshot struct {
	Version  int                 `json:"version"`
	Remote   RemotePreference    `json:"remote"`
	Advanced AdvancedPreferences `json:"advanced"`
	Saved    int64               `json:"saved_unix"`
}

// Store is a threadsafe, file-backed holder of the user preferences.
// Every setter writes the whole snapshot before returning.
type Store struct {
	saveMu   sync.Mutex
	mu       sync.RWMutex
	path     string
	remote   RemotePreference
	advanced AdvancedPreferences
}

// Open loads the snapshot at path, falling back to defaults if it does not exist.
// An empty path yields a memory-only store.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	s.remote, s.advanced = Defaults()
	if path == "" {
		return s, nil
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("load preferences %s: %w", path, err)
	}
	return s, nil
}

// Path returns the snapshot location.
func (s *Store) Path() string {
	return s.path
}

// Remote returns the stored remote preference.
func (s *Store) Remote() RemotePreference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remote
}

// SetRemote replaces and persists the remote preference.
func (s *Store) SetRemote(p RemotePreference) error {
	if err := p.validate(); err != nil {
		return err
	}
	return s.commit(func(snap *snapshot) { snap.Remote = p })
}

// Advanced returns the stored advanced switches.
func (s *Store) Advanced() AdvancedPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.advanced
}

// SetAdvanced replaces and persists the advanced switches.
func (s *Store) SetAdvanced(p AdvancedPreferences) error {
	return s.commit(func(snap *snapshot) { snap.Advanced = p })
}

// Reload re-reads the snapshot from disk.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.load()
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return err
	}
	if snap.Version != snapshotVersion {
		log.Printf("preferences %s: unknown snapshot version %d, reading anyway", s.path, snap.Version)
	}
	if err := snap.Remote.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.remote = snap.Remote
	s.advanced = snap.Advanced
	s.mu.Unlock()
	return nil
}

// commit applies update to a copy of the current values, writes it, and only
// then makes it visible. A failed write leaves the store unchanged.
func (s *Store) commit(update func(*snapshot)) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	snap := snapshot{
		Version:  snapshotVersion,
		Remote:   s.remote,
		Advanced: s.advanced,
	}
	s.mu.RUnlock()
	update(&snap)

	if err := s.write(snap); err != nil {
		return err
	}
	s.mu.Lock()
	s.remote = snap.Remote
	s.advanced = snap.Advanced
	s.mu.Unlock()
	return nil
}

// write persists snap with tmp+rename. Callers hold saveMu.
func (s *Store) write(snap snapshot) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	snap.Saved = time.Now().Unix()

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
