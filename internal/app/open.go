package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"

	"refremote/internal/daemon"
	"refremote/internal/prefs"
)

// ErrNoRemoteListener is returned by Open when no instance accepts remote requests.
var ErrNoRemoteListener = errors.New("no running instance accepts remote operation")

// OpenParams configures a hand-off of files to the running instance.
type OpenParams struct {
	Files   []string
	Timeout time.Duration
}

// Inbox lists the OPEN requests the daemon received.
func (a *App) Inbox(ctx context.Context, timeout time.Duration) ([]daemon.InboxMessage, error) {
	var msgs []daemon.InboxMessage
	err := a.withClient(ctx, timeout, func(ctx context.Context, client daemon.ControlClient) error {
		resp, err := client.Inbox(ctx, &emptypb.Empty{})
		if err != nil {
			return fmt.Errorf("daemon inbox RPC failed: %w", err)
		}
		msgs = daemon.DecodeInbox(resp)
		return nil
	})
	return msgs, err
}

// Open forwards files to the instance listening on the stored remote port.
// Relative paths are made absolute since the receiver has its own working directory.
func (a *App) Open(ctx context.Context, params OpenParams) (int, error) {
	if len(params.Files) == 0 {
		return 0, errors.New("no files given")
	}
	if params.Timeout <= 0 {
		return 0, errors.New("timeout must be greater than 0")
	}
	rp, err := a.LocalRemotePreference()
	if err != nil {
		return 0, err
	}
	if !rp.Enabled {
		return rp.Port, ErrNoRemoteListener
	}

	args := make([]string, 0, len(params.Files))
	for _, f := range params.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return rp.Port, fmt.Errorf("resolve %s: %w", f, err)
		}
		args = append(args, abs)
	}

	ctx, cancel := context.WithTimeout(ctx, params.Timeout)
	defer cancel()
	if err := sendOpen(ctx, rp.Port, args); err != nil {
		return rp.Port, fmt.Errorf("%w: %v", ErrNoRemoteListener, err)
	}
	return rp.Port, nil
}

// LocalRemotePreference reads the remote preference straight from the preferences file.
func (a *App) LocalRemotePreference() (prefs.RemotePreference, error) {
	store, err := a.openStore()
	if err != nil {
		return prefs.RemotePreference{}, err
	}
	return store.Remote(), nil
}

// LocalAdvancedPreferences reads the advanced switches straight from the preferences file.
func (a *App) LocalAdvancedPreferences() (prefs.AdvancedPreferences, error) {
	store, err := a.openStore()
	if err != nil {
		return prefs.AdvancedPreferences{}, err
	}
	return store.Advanced(), nil
}

func (a *App) openStore() (*prefs.Store, error) {
	path, err := a.PrefsPath()
	if err != nil {
		return nil, err
	}
	return prefs.Open(path)
}
