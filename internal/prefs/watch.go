package prefs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchSettle = 100 * time.Millisecond

// Watch reloads the store whenever its file changes on disk and calls onChange
// with the new values. Writes that leave the values untouched are ignored, which
// includes the store's own saves. Watch blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, onChange func(RemotePreference, AdvancedPreferences)) error {
	if s.path == "" {
		return errors.New("preferences store has no backing file")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: atomic saves replace the file and would drop a file watch.
	// The directory may not exist before the first save.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	name := filepath.Clean(s.path)
	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			settle = time.After(watchSettle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("preferences watcher: %v", err)
		case <-settle:
			settle = nil
			oldRemote, oldAdvanced := s.Remote(), s.Advanced()
			if err := s.Reload(); err != nil {
				log.Printf("preferences watcher: reload %s: %v", s.path, err)
				continue
			}
			remote, advanced := s.Remote(), s.Advanced()
			if remote == oldRemote && advanced == oldAdvanced {
				continue
			}
			if onChange != nil {
				onChange(remote, advanced)
			}
		}
	}
}
