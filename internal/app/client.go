package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"refremote/internal/daemon"
	"refremote/internal/remote"
)

var (
	daemonIsRunning  = daemon.IsRunning
	daemonRunningPID = daemon.RunningPID
	dialDaemonClient = func(ctx context.Context) (daemon.ControlClient, io.Closer, error) {
		client, conn, err := daemon.Dial(ctx)
		if err != nil {
			return nil, nil, err
		}
		return client, conn, nil
	}
	sendOpen = remote.SendOpen
)

func resetDaemonDeps() {
	daemonIsRunning = daemon.IsRunning
	daemonRunningPID = daemon.RunningPID
	dialDaemonClient = func(ctx context.Context) (daemon.ControlClient, io.Closer, error) {
		client, conn, err := daemon.Dial(ctx)
		if err != nil {
			return nil, nil, err
		}
		return client, conn, nil
	}
	sendOpen = remote.SendOpen
}

func (a *App) withClient(ctx context.Context, timeout time.Duration, fn func(context.Context, daemon.ControlClient) error) error {
	if timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	if !daemonIsRunning() {
		return errors.New("daemon is not running")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, conn, err := dialDaemonClient(ctx)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	if conn != nil {
		defer conn.Close()
	}

	return fn(ctx, client)
}
