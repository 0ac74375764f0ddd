package app

import (
	"sync"

	"refremote/internal/config"
	"refremote/internal/daemon"
)

// Options configures the top-level controller.
type Options struct {
	// ConfigPath points to the optional daemon config file.
	ConfigPath string
}

// App exposes the operations shared by the CLI and the TUI.
type App struct {
	cfgPath string

	// prefsPath is resolved from the config on first use.
	mu        sync.Mutex
	prefsPath string
}

// New constructs the shared controller facade.
func New(opts Options) *App {
	return &App{
		cfgPath: opts.ConfigPath,
	}
}

// ConfigPath returns the configured config file path (if any).
func (a *App) ConfigPath() string {
	return a.cfgPath
}

// PrefsPath returns the preferences file the daemon reads, as the config resolves it.
func (a *App) PrefsPath() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.prefsPath != "" {
		return a.prefsPath, nil
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return "", err
	}
	path := cfg.PrefsPath
	if path == "" {
		path = daemon.DefaultPrefsPath()
	}
	a.prefsPath = path
	return path, nil
}
