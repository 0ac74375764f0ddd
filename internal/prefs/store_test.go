package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "missing", "prefs.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	wantRemote, wantAdvanced := Defaults()
	if s.Remote() != wantRemote || s.Advanced() != wantAdvanced {
		t.Fatalf("unexpected defaults %+v %+v", s.Remote(), s.Advanced())
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SetRemote(RemotePreference{Enabled: true, Port: 7000}); err != nil {
		t.Fatalf("SetRemote: %v", err)
	}
	if err := s.SetAdvanced(AdvancedPreferences{UseIEEEAbbreviations: true}); err != nil {
		t.Fatalf("SetAdvanced: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("snapshot mode %o, want 600", perm)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.Remote() != (RemotePreference{Enabled: true, Port: 7000}) {
		t.Fatalf("remote not persisted: %+v", again.Remote())
	}
	if again.Advanced() != (AdvancedPreferences{UseIEEEAbbreviations: true}) {
		t.Fatalf("advanced not persisted: %+v", again.Advanced())
	}
}

func TestSetRemoteRejectsPrivilegedPort(t *testing.T) {
	s, _ := Open("")
	if err := s.SetRemote(RemotePreference{Enabled: true, Port: 80}); err == nil {
		t.Fatal("expected error for port 80")
	}
	if s.Remote().Port != DefaultRemotePort {
		t.Fatalf("port changed to %d", s.Remote().Port)
	}
}

func TestOpenRejectsCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(bad); err == nil {
		t.Fatal("expected parse error")
	}

	outOfRange := filepath.Join(dir, "range.json")
	if err := os.WriteFile(outOfRange, []byte(`{"version":1,"remote":{"enabled":true,"port":22}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(outOfRange); err == nil {
		t.Fatal("expected range error")
	}
}

func TestWatchReportsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SetRemote(RemotePreference{Port: 6050}); err != nil {
		t.Fatalf("SetRemote: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan RemotePreference, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- s.Watch(ctx, func(r RemotePreference, _ AdvancedPreferences) { changes <- r })
	}()
	// Let the watcher register before editing.
	time.Sleep(100 * time.Millisecond)

	other, err := Open(path)
	if err != nil {
		t.Fatalf("second handle: %v", err)
	}
	if err := other.SetRemote(RemotePreference{Enabled: true, Port: 7100}); err != nil {
		t.Fatalf("external SetRemote: %v", err)
	}

	select {
	case got := <-changes:
		if got != (RemotePreference{Enabled: true, Port: 7100}) {
			t.Fatalf("unexpected change %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
	if s.Remote().Port != 7100 {
		t.Fatalf("store not reloaded: %+v", s.Remote())
	}

	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("Watch: %v", err)
	}
}

func TestWatchWithoutFile(t *testing.T) {
	s, _ := Open("")
	if err := s.Watch(context.Background(), nil); err == nil {
		t.Fatal("expected error for memory-only store")
	}
}

func TestFailedSaveKeepsPreviousValues(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "sub")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Open(filepath.Join(blocker, "prefs.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	wantRemote, wantAdvanced := Defaults()

	if err := s.SetRemote(RemotePreference{Enabled: true, Port: 7000}); err == nil {
		t.Fatal("expected SetRemote to fail")
	}
	if s.Remote() != wantRemote {
		t.Fatalf("remote changed after failed save: %+v", s.Remote())
	}

	if err := s.SetAdvanced(AdvancedPreferences{UseIEEEAbbreviations: true}); err == nil {
		t.Fatal("expected SetAdvanced to fail")
	}
	if s.Advanced() != wantAdvanced {
		t.Fatalf("advanced changed after failed save: %+v", s.Advanced())
	}
}

func TestWatchCreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refremote", "preferences.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan RemotePreference, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- s.Watch(ctx, func(r RemotePreference, _ AdvancedPreferences) { changes <- r })
	}()
	time.Sleep(100 * time.Millisecond)

	other, err := Open(path)
	if err != nil {
		t.Fatalf("second handle: %v", err)
	}
	if err := other.SetRemote(RemotePreference{Enabled: true, Port: 7200}); err != nil {
		t.Fatalf("external SetRemote: %v", err)
	}

	select {
	case got := <-changes:
		if got.Port != 7200 || !got.Enabled {
			t.Fatalf("unexpected change %+v", got)
		}
	case err := <-errc:
		t.Fatalf("Watch returned early: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("Watch: %v", err)
	}
}
