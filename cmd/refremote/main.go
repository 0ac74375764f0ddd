package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"refremote/internal/app"
	"refremote/internal/daemon"
	"refremote/internal/prefs"
	"refremote/internal/settings"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "refremote [command]",
	Short: "refremote: remote operation for a running reference library instance",
	Long: `refremote keeps the advanced preferences of the reference manager and runs the
remote operation listener that lets new files be opened in an already running
instance instead of starting another one.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
}

// controllerAPI is what the commands need from app.App.
type controllerAPI interface {
	Ping(ctx context.Context, timeout time.Duration) (string, error)
	Settings(ctx context.Context, timeout time.Duration) (settings.Values, error)
	StoreSettings(ctx context.Context, params app.StoreParams) (app.StoreResult, error)
	Inbox(ctx context.Context, timeout time.Duration) ([]daemon.InboxMessage, error)
	Open(ctx context.Context, params app.OpenParams) (int, error)
	LocalAdvancedPreferences() (prefs.AdvancedPreferences, error)
	Status() (app.DaemonStatus, error)
	StopDaemon(force bool) error
	StartDaemon() (*app.DaemonHandle, error)
}

var controllerFactory = func() controllerAPI {
	return app.New(app.Options{ConfigPath: configPath})
}

func controller() controllerAPI {
	return controllerFactory()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
