package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"refremote/internal/config"
	"refremote/internal/prefs"
)

// Server wraps the gRPC control server, its UNIX listener and the remote listener.
type Server struct {
	grpc            *grpc.Server
	ln              net.Listener
	path            string
	svc             *service
	stopWatch       context.CancelFunc
	watchDone       chan struct{}
	logCloser       io.Closer
	shutdownTimeout time.Duration
	ownsPID         bool
}

// Close stops the servers, unlinks the socket and removes the pid file.
func (s *Server) Close() error {
	if s.stopWatch != nil {
		s.stopWatch()
		<-s.watchDone
	}
	if s.grpc != nil {
		stopped := make(chan struct{})
		go func() {
			s.grpc.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(s.shutdownTimeout):
			log.Printf("graceful stop timed out after %s, forcing", s.shutdownTimeout)
			s.grpc.Stop()
		}
	}
	if s.svc != nil {
		s.svc.shutdown()
	}
	var errs []error
	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if s.ownsPID {
		if err := RemovePID(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.logCloser != nil {
		if err := s.logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartDaemon loads configuration and preferences, opens the remote listener
// when enabled, and serves the control service on the UNIX socket.
func StartDaemon(configPath string) (*Server, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logCloser, err := setupLogging(cfg)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	srv := &Server{logCloser: logCloser, shutdownTimeout: cfg.ShutdownTimeout}

	if err := EnsureRuntimeDir(); err != nil {
		srv.Close()
		return nil, err
	}
	path := SocketPath()

	// If stale socket file exists but daemon is not running, remove it
	if _, err := os.Stat(path); err == nil && !IsRunning() {
		if err := os.Remove(path); err != nil {
			srv.Close()
			return nil, err
		}
	}

	prefsPath := cfg.PrefsPath
	if prefsPath == "" {
		prefsPath = DefaultPrefsPath()
	}
	store, err := prefs.Open(prefsPath)
	if err != nil {
		srv.Close()
		return nil, err
	}
	srv.svc = newService(store)
	srv.svc.startFromPreferences()

	ln, err := net.Listen("unix", path)
	if err != nil {
		srv.Close()
		return nil, err
	}
	srv.path = path
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		srv.Close()
		return nil, err
	}
	srv.ln = ln

	srv.grpc = grpc.NewServer()
	RegisterControlServer(srv.grpc, srv.svc)
	go func() {
		if err := srv.grpc.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Printf("control server stopped: %v", err)
		}
	}()

	if err := WritePID(os.Getpid()); err != nil {
		srv.Close()
		return nil, err
	}
	srv.ownsPID = true

	ctx, cancel := context.WithCancel(context.Background())
	srv.stopWatch = cancel
	srv.watchDone = make(chan struct{})
	go func() {
		defer close(srv.watchDone)
		if err := store.Watch(ctx, srv.svc.applyExternal); err != nil {
			log.Printf("preferences watcher disabled: %v", err)
		}
	}()

	log.Printf("daemon listening on %s (preferences %s)", path, prefsPath)
	return srv, nil
}

// StopRunningDaemon sends a termination signal to the currently running daemon if any.
func StopRunningDaemon(force bool) error {
	pid, err := RunningPID()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if IsRunning() {
				return fmt.Errorf("daemon is running but PID file %q is missing; stop it manually", PIDPath())
			}
			return nil
		}
		return fmt.Errorf("unable to read daemon PID: %w", err)
	}
	if pid == os.Getpid() {
		return errors.New("refusing to stop current process")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := sendSignal(proc, syscall.SIGTERM); err != nil {
		return err
	}
	if waitForShutdown(3 * time.Second) {
		return nil
	}
	if !force {
		return fmt.Errorf("daemon process %d did not exit after SIGTERM", pid)
	}
	if err := sendSignal(proc, syscall.SIGKILL); err != nil {
		return err
	}
	if waitForShutdown(2 * time.Second) {
		return nil
	}
	return fmt.Errorf("daemon process %d did not exit after SIGKILL", pid)
}

func sendSignal(proc *os.Process, sig syscall.Signal) error {
	if err := proc.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = RemovePID()
			return nil
		}
		return err
	}
	return nil
}

func waitForShutdown(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !IsRunning() {
			_ = RemovePID()
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Millisecond)
	}
}
