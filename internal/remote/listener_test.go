package remote

import (
	"context"
	"net"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

// freePort asks the kernel for an unused user port on localhost.
func freePort(t *testing.T) int {
	t.Helper()
	for i := 0; i < 20; i++ {
		ln, err := net.Listen("tcp", "localhost:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		port := ln.Addr().(*net.TCPAddr).Port
		ln.Close()
		if IsUserPort(port) {
			return port
		}
	}
	t.Fatal("no free user port")
	return 0
}

type recordingHandler struct {
	mu   sync.Mutex
	seen [][]string
}

func (h *recordingHandler) HandleCommandLineArguments(args []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, args)
}

func (h *recordingHandler) calls() [][]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]string(nil), h.seen...)
}

func TestListenerRoundTrip(t *testing.T) {
	l := NewListener()
	h := &recordingHandler{}
	port := freePort(t)
	if err := l.OpenAndStart(h, port); err != nil {
		t.Fatalf("OpenAndStart: %v", err)
	}
	t.Cleanup(l.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Ping(ctx, port); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := SendOpen(ctx, port, []string{"/tmp/a.bib", "/tmp/b c.bib"}); err != nil {
		t.Fatalf("SendOpen: %v", err)
	}

	want := [][]string{{"/tmp/a.bib", "/tmp/b c.bib"}}
	if got := h.calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("handler saw %v, want %v", got, want)
	}
}

func TestListenerOpenAndStartIsIdempotent(t *testing.T) {
	l := NewListener()
	h := &recordingHandler{}
	port := freePort(t)
	if err := l.OpenAndStart(h, port); err != nil {
		t.Fatalf("first OpenAndStart: %v", err)
	}
	t.Cleanup(l.Stop)

	other := freePort(t)
	if err := l.OpenAndStart(h, other); err != nil {
		t.Fatalf("second OpenAndStart: %v", err)
	}
	if l.Port() != port {
		t.Fatalf("listener rebound to %d, want %d", l.Port(), port)
	}
}

func TestListenerStopIsIdempotent(t *testing.T) {
	l := NewListener()
	l.Stop()

	port := freePort(t)
	if err := l.OpenAndStart(&recordingHandler{}, port); err != nil {
		t.Fatalf("OpenAndStart: %v", err)
	}
	l.Stop()
	l.Stop()
	if l.Running() || l.Port() != 0 {
		t.Fatalf("listener still running after Stop")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := Ping(ctx, port); err == nil {
		t.Fatalf("ping succeeded after Stop")
	}
}

func TestListenerStopClosesIdleConnections(t *testing.T) {
	l := NewListener()
	port := freePort(t)
	if err := l.OpenAndStart(&recordingHandler{}, port); err != nil {
		t.Fatalf("OpenAndStart: %v", err)
	}
	c, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on an idle connection")
	}
}

func TestListenerRejectsBadArguments(t *testing.T) {
	l := NewListener()
	if err := l.OpenAndStart(nil, 6050); err == nil {
		t.Fatal("expected nil handler error")
	}
	if err := l.OpenAndStart(&recordingHandler{}, 80); err == nil {
		t.Fatal("expected port range error")
	}
	if l.Running() {
		t.Fatal("listener running after rejected start")
	}
}

func TestDispatch(t *testing.T) {
	h := &recordingHandler{}
	tests := []struct {
		line string
		want string
	}{
		{"PING", "PONG"},
		{"OPEN a\tb", "OK"},
		{"OPEN", "OK"},
		{"HELLO", `ERROR: unknown request: "HELLO"`},
	}
	for _, tt := range tests {
		if got := dispatch(tt.line, h); got != tt.want {
			t.Fatalf("dispatch(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
	calls := h.calls()
	if len(calls) != 2 || !reflect.DeepEqual(calls[0], []string{"a", "b"}) || calls[1] != nil {
		t.Fatalf("unexpected handler calls %v", calls)
	}
}

func TestSendOpenRejectsControlCharacters(t *testing.T) {
	err := SendOpen(context.Background(), 6050, []string{"a\tb"})
	if err == nil || !strings.Contains(err.Error(), "control character") {
		t.Fatalf("unexpected error %v", err)
	}
	if err := SendOpen(context.Background(), 6050, nil); err == nil {
		t.Fatal("expected error for empty args")
	}
}
