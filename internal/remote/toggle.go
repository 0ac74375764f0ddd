package remote

import (
	"fmt"
	"log"

	"refremote/internal/prefs"
)

// PreferenceStore persists the remote preference.
type PreferenceStore interface {
	Remote() prefs.RemotePreference
	SetRemote(prefs.RemotePreference) error
}

// Service is the listener lifecycle the toggle drives.
type Service interface {
	OpenAndStart(handler MessageHandler, port int) error
	Stop()
}

// NoticeKind classifies user-facing notices produced by the toggle.
type NoticeKind int

const (
	// NoticeRestartRequired: the port changed while the listener was enabled.
	NoticeRestartRequired NoticeKind = iota + 1
)

// Notice is a message meant for the user, not an error.
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
}

// Notifier delivers notices to whatever surface shows them.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// ToggleResult describes what Apply changed.
type ToggleResult struct {
	Preference      prefs.RemotePreference
	PortChanged     bool
	RestartRequired bool
	Listening       bool
}

// Toggle validates, persists and applies the remote listener settings.
type Toggle struct {
	Store    PreferenceStore
	Listener Service
	Handler  MessageHandler
	Notifier Notifier // optional
}

// Apply stores the desired state and starts or stops the listener.
// An invalid port aborts before anything is written or the listener is touched.
// A running listener is never rebound: a port change while enabled only yields
// a restart notice.
func (t *Toggle) Apply(enabled bool, portText string) (ToggleResult, error) {
	var res ToggleResult

	port, err := ValidatePort(portText)
	if err != nil {
		return res, err
	}

	pref := t.Store.Remote()
	if pref.IsDifferentPort(port) {
		pref.Port = port
		res.PortChanged = true
		if pref.Enabled {
			res.RestartRequired = true
			t.notify(restartNotice())
		}
	}

	pref.Enabled = enabled
	if err := t.Store.SetRemote(pref); err != nil {
		return res, fmt.Errorf("store remote preference: %w", err)
	}
	res.Preference = pref

	if !enabled {
		t.Listener.Stop()
		return res, nil
	}
	if err := t.Listener.OpenAndStart(t.Handler, pref.Port); err != nil {
		return res, fmt.Errorf("start remote listener on port %d: %w", pref.Port, err)
	}
	res.Listening = true
	return res, nil
}

func (t *Toggle) notify(n Notice) {
	if t.Notifier == nil {
		log.Printf("%s: %s", n.Title, n.Message)
		return
	}
	t.Notifier.Notify(n)
}

func restartNotice() Notice {
	return Notice{
		Kind:    NoticeRestartRequired,
		Title:   PortFieldName,
		Message: "You must restart the application for the new remote server port to come into effect.",
	}
}
