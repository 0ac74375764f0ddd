package app

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"

	"refremote/internal/daemon"
)

// DaemonStatus represents current information about the daemon process.
type DaemonStatus struct {
	Running bool
	PID     int
	// Remote is filled when the daemon answered the status RPC.
	Remote *daemon.StatusReply
}

// Status returns whether the daemon is running, its PID and listener state if known.
func (a *App) Status() (DaemonStatus, error) {
	if !daemonIsRunning() {
		return DaemonStatus{Running: false}, nil
	}
	pid, err := daemonRunningPID()
	if err != nil {
		return DaemonStatus{Running: true}, err
	}
	st := DaemonStatus{Running: true, PID: pid}

	err = a.withClient(context.Background(), 2*time.Second, func(ctx context.Context, client daemon.ControlClient) error {
		resp, err := client.Status(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		reply := daemon.DecodeStatus(resp)
		st.Remote = &reply
		return nil
	})
	return st, err
}

// StopDaemon attempts to stop the running daemon.
func (a *App) StopDaemon(force bool) error {
	return daemon.StopRunningDaemon(force)
}

// DaemonHandle holds a running daemon instance.
type DaemonHandle struct {
	srv *daemon.Server
}

// Close stops the running daemon instance.
func (h *DaemonHandle) Close() error {
	if h == nil || h.srv == nil {
		return nil
	}
	return h.srv.Close()
}

// StartDaemon starts the daemon and returns a handle for closing it.
func (a *App) StartDaemon() (*DaemonHandle, error) {
	srv, err := daemon.StartDaemon(a.cfgPath)
	if err != nil {
		return nil, err
	}
	return &DaemonHandle{srv: srv}, nil
}
