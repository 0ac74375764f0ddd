package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"
)

// SocketBaseName is the UNIX socket filename
const SocketBaseName = "refremote.sock"

const (
	pidFileName   = "refremote.pid"
	prefsDirName  = "refremote"
	prefsFileName = "preferences.json"
)

// SocketPath returns the full path to the UNIX control socket
// Order of precedence (first wins):
// 1) REFREMOTE_SOCKET (absolute path to socket)
// 2) REFREMOTE_RUNTIME_DIR
// 3) if runtime=linux: $XDG_RUNTIME_DIR or /run/user/<UID>
//    else (darwin, *bsd, etc): /tmp
func SocketPath() string {
	if explicit := os.Getenv("REFREMOTE_SOCKET"); explicit != "" {
		return explicit
	}

	uid := currentUID()

	if rd := os.Getenv("REFREMOTE_RUNTIME_DIR"); rd != "" {
		return filepath.Join(rd, SocketBaseName)
	}

	if runtime.GOOS == "linux" {
		if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
			return filepath.Join(v, SocketBaseName)
		}
		return filepath.Join("/run/user", uid, SocketBaseName)
	}

	// keep it short to avoid the sun_path length limit
	return filepath.Join("/tmp", "refremote-"+uid+".sock")
}

// EnsureRuntimeDir creates the socket directory if it doesn't exist
func EnsureRuntimeDir() error {
	return os.MkdirAll(filepath.Dir(SocketPath()), 0o700)
}

// PIDPath returns the full path to the PID file
func PIDPath() string {
	return filepath.Join(filepath.Dir(SocketPath()), pidFileName)
}

// DefaultPrefsPath is where preferences live unless configured otherwise.
func DefaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = filepath.Dir(SocketPath())
	}
	return filepath.Join(dir, prefsDirName, prefsFileName)
}

// WritePID stores the provided pid into the pid file
func WritePID(pid int) error {
	if err := EnsureRuntimeDir(); err != nil {
		return err
	}
	return os.WriteFile(PIDPath(), []byte(fmt.Sprintf("%d\n", pid)), 0o600)
}

// RemovePID removes the pid file if it exists
func RemovePID() error {
	if err := os.Remove(PIDPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// RunningPID returns the pid stored in the pid file if any
func RunningPID() (int, error) {
	data, err := os.ReadFile(PIDPath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// IsRunning pings the daemon over gRPC and returns true if it responds.
func IsRunning() bool {
	if _, err := os.Stat(SocketPath()); err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	client, conn, err := Dial(ctx)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := client.Ping(ctx, &emptypb.Empty{}); err != nil {
		return false
	}
	return true
}

func currentUID() string {
	u, err := user.Current()
	if err == nil && u != nil && u.Uid != "" {
		return u.Uid
	}
	return "0"
}
