package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"refremote/internal/app"
	"refremote/internal/daemon"
	"refremote/internal/prefs"
	"refremote/internal/remote"
	"refremote/internal/settings"
)

func setFlag(t *testing.T, name, value string) {
	t.Helper()
	f := cmdSet.Flags().Lookup(name)
	if f == nil {
		t.Fatalf("unknown flag %s", name)
	}
	if err := cmdSet.Flags().Set(name, value); err != nil {
		t.Fatalf("set %s: %v", name, err)
	}
	t.Cleanup(func() {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func currentValues() settings.Values {
	return settings.Values{
		UseRemoteServer:          true,
		RemoteServerPort:         "6050",
		UseCaseKeeperOnSearch:    true,
		UseUnitFormatterOnSearch: true,
	}
}

func TestSetOverridesOnlyChangedFlags(t *testing.T) {
	var stored settings.Values
	withController(t, &stubController{
		settingsFunc: func(ctx context.Context, timeout time.Duration) (settings.Values, error) {
			return currentValues(), nil
		},
		storeSettingsFunc: func(ctx context.Context, params app.StoreParams) (app.StoreResult, error) {
			stored = params.Values
			return app.StoreResult{
				Values:          params.Values,
				PortChanged:     true,
				RestartRequired: true,
				Listening:       true,
				Notices: []daemon.NoticeInfo{{
					Title:   remote.PortFieldName,
					Message: "You must restart the application for the new remote server port to come into effect.",
				}},
			}, nil
		},
	})
	buf := withOutput(t, cmdSet)
	setFlag(t, "port", "7000")
	setFlag(t, "ieee", "true")

	if err := cmdSet.RunE(cmdSet, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}

	want := currentValues()
	want.RemoteServerPort = "7000"
	want.UseIEEEAbbreviations = true
	if stored != want {
		t.Fatalf("stored %+v, want %+v", stored, want)
	}
	out := buf.String()
	if !strings.Contains(out, "must restart the application") {
		t.Fatalf("restart notice missing from output:\n%s", out)
	}
	if !strings.Contains(out, "Remote listener is running") {
		t.Fatalf("listener state missing from output:\n%s", out)
	}
}

func TestSetNoRemoteStopsListener(t *testing.T) {
	var stored settings.Values
	withController(t, &stubController{
		settingsFunc: func(ctx context.Context, timeout time.Duration) (settings.Values, error) {
			return currentValues(), nil
		},
		storeSettingsFunc: func(ctx context.Context, params app.StoreParams) (app.StoreResult, error) {
			stored = params.Values
			return app.StoreResult{Values: params.Values}, nil
		},
	})
	buf := withOutput(t, cmdSet)
	setFlag(t, "no-remote", "true")

	if err := cmdSet.RunE(cmdSet, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if stored.UseRemoteServer {
		t.Fatalf("expected remote operation to be disabled")
	}
	if !strings.Contains(buf.String(), "Remote listener is stopped") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestSetWithoutFlags(t *testing.T) {
	withController(t, &stubController{})
	if err := cmdSet.RunE(cmdSet, nil); err == nil {
		t.Fatalf("expected error when no flag is given")
	}
}

func TestSetPropagatesInvalidPort(t *testing.T) {
	withController(t, &stubController{
		settingsFunc: func(ctx context.Context, timeout time.Duration) (settings.Values, error) {
			return currentValues(), nil
		},
		storeSettingsFunc: func(ctx context.Context, params app.StoreParams) (app.StoreResult, error) {
			_, err := remote.ValidatePort(params.Values.RemoteServerPort)
			return app.StoreResult{}, err
		},
	})
	setFlag(t, "port", "70000")

	err := cmdSet.RunE(cmdSet, nil)
	if !errors.Is(err, remote.ErrInvalidPort) {
		t.Fatalf("expected ErrInvalidPort, got %v", err)
	}
}

func TestOpenReportsPort(t *testing.T) {
	withController(t, &stubController{
		openFunc: func(ctx context.Context, params app.OpenParams) (int, error) {
			if len(params.Files) != 2 {
				t.Fatalf("expected 2 files, got %v", params.Files)
			}
			return 6050, nil
		},
	})
	buf := withOutput(t, cmdOpen)

	if err := cmdOpen.RunE(cmdOpen, []string{"a.bib", "b.bib"}); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if got := buf.String(); got != "Sent 2 file(s) to the instance on port 6050\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestOpenWithoutListener(t *testing.T) {
	withController(t, &stubController{
		openFunc: func(ctx context.Context, params app.OpenParams) (int, error) {
			return 6050, app.ErrNoRemoteListener
		},
	})
	err := cmdOpen.RunE(cmdOpen, []string{"a.bib"})
	if !errors.Is(err, app.ErrNoRemoteListener) {
		t.Fatalf("expected ErrNoRemoteListener, got %v", err)
	}
	if !strings.Contains(err.Error(), "port 6050") {
		t.Fatalf("expected port in error, got %v", err)
	}
}

func TestInboxListsMessages(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	withController(t, &stubController{
		inboxFunc: func(ctx context.Context, timeout time.Duration) ([]daemon.InboxMessage, error) {
			return []daemon.InboxMessage{{ID: "abc", Args: []string{"/tmp/a.bib"}, ReceivedAt: at}}, nil
		},
	})
	buf := withOutput(t, cmdInbox)

	if err := cmdInbox.RunE(cmdInbox, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "[abc]") || !strings.Contains(out, "/tmp/a.bib") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAbbrevUsesSelectedList(t *testing.T) {
	withController(t, &stubController{
		advancedFunc: func() (prefs.AdvancedPreferences, error) {
			return prefs.AdvancedPreferences{UseIEEEAbbreviations: true}, nil
		},
	})
	buf := withOutput(t, cmdAbbrev)

	if err := cmdAbbrev.RunE(cmdAbbrev, []string{"IEEE", "Transactions", "on", "Software", "Engineering"}); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "IEEE_J_SE" {
		t.Fatalf("unexpected abbreviation %q", got)
	}
}

func TestStatusWhenDaemonDown(t *testing.T) {
	withController(t, &stubController{
		statusFunc: func() (app.DaemonStatus, error) {
			return app.DaemonStatus{}, nil
		},
	})
	buf := withOutput(t, cmdStatus)

	if err := cmdStatus.RunE(cmdStatus, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if got := buf.String(); got != "Daemon is not running\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestStatusShowsPendingPort(t *testing.T) {
	withController(t, &stubController{
		statusFunc: func() (app.DaemonStatus, error) {
			return app.DaemonStatus{Running: true, PID: 42, Remote: &daemon.StatusReply{
				PID:              42,
				Listening:        true,
				ListenerPort:     6050,
				RemoteEnabled:    true,
				RemotePort:       7000,
				AbbreviationList: "default",
			}}, nil
		},
	})
	buf := withOutput(t, cmdStatus)

	if err := cmdStatus.RunE(cmdStatus, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "Stored port 7000 takes effect after a restart") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSetTimeoutAloneChangesNothing(t *testing.T) {
	t.Run("earlier run", func(t *testing.T) {
		withController(t, &stubController{
			settingsFunc: func(ctx context.Context, timeout time.Duration) (settings.Values, error) {
				return currentValues(), nil
			},
			storeSettingsFunc: func(ctx context.Context, params app.StoreParams) (app.StoreResult, error) {
				return app.StoreResult{Values: params.Values}, nil
			},
		})
		withOutput(t, cmdSet)
		setFlag(t, "port", "7000")
		if err := cmdSet.RunE(cmdSet, nil); err != nil {
			t.Fatalf("RunE error: %v", err)
		}
	})

	// Settings and StoreSettings panic when called.
	withController(t, &stubController{})
	setFlag(t, "timeout", "5")
	if err := cmdSet.RunE(cmdSet, nil); err == nil {
		t.Fatal("expected error when only --timeout is given")
	}
}
