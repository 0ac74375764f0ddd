package remote

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	maxRequestLine  = 64 * 1024
	connIdleTimeout = 5 * time.Second
)

// MessageHandler receives the arguments forwarded by another instance.
type MessageHandler interface {
	HandleCommandLineArguments(args []string)
}

// HandlerFunc adapts a plain function to MessageHandler.
type HandlerFunc func(args []string)

func (f HandlerFunc) HandleCommandLineArguments(args []string) {
	f(args)
}

// Listener accepts remote operation requests on localhost.
// The zero value is ready to use.
type Listener struct {
	mu    sync.Mutex
	ln    net.Listener
	port  int
	conns map[net.Conn]struct{}
	done  chan struct{}
}

// NewListener returns a stopped listener.
func NewListener() *Listener {
	return &Listener{}
}

// OpenAndStart binds localhost:port and serves requests in the background.
// It is a no-op when the listener is already running, whatever port it is bound to.
func (l *Listener) OpenAndStart(handler MessageHandler, port int) error {
	if handler == nil {
		return errors.New("remote listener: nil message handler")
	}
	if !IsUserPort(port) {
		return fmt.Errorf("remote listener: port %d outside %d-%d", port, MinUserPort, MaxUserPort)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln != nil {
		return nil
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("remote listener: bind port %d: %w", port, err)
	}
	l.ln = ln
	l.port = port
	l.conns = make(map[net.Conn]struct{})
	l.done = make(chan struct{})

	go l.serve(ln, handler, l.done)
	log.Printf("remote listener started on %s", ln.Addr())
	return nil
}

// Stop closes the socket and waits for the accept loop to exit.
// Stopping a stopped listener does nothing.
func (l *Listener) Stop() {
	l.mu.Lock()
	ln := l.ln
	conns := l.conns
	done := l.done
	l.ln = nil
	l.port = 0
	l.conns = nil
	l.done = nil
	l.mu.Unlock()

	if ln == nil {
		return
	}
	if err := ln.Close(); err != nil {
		log.Printf("remote listener: close: %v", err)
	}
	for c := range conns {
		_ = c.Close()
	}
	<-done
	log.Printf("remote listener stopped")
}

// Running reports whether the listener currently holds a socket.
func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ln != nil
}

// Port returns the bound port, or 0 when stopped.
func (l *Listener) Port() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port
}

// Addr returns the bound address, or nil when stopped.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

func (l *Listener) serve(ln net.Listener, handler MessageHandler, done chan<- struct{}) {
	defer close(done)
	var conns sync.WaitGroup
	defer conns.Wait()
	for {
		c, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Printf("remote listener: accept: %v", err)
			}
			return
		}
		if !l.track(ln, c) {
			_ = c.Close()
			return
		}
		conns.Add(1)
		go func() {
			defer conns.Done()
			defer l.untrack(c)
			handleConnection(c, handler)
		}()
	}
}

// track registers c unless the listener was stopped or replaced meanwhile.
func (l *Listener) track(ln net.Listener, c net.Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln != ln {
		return false
	}
	l.conns[c] = struct{}{}
	return true
}

func (l *Listener) untrack(c net.Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conns != nil {
		delete(l.conns, c)
	}
}

func handleConnection(c net.Conn, handler MessageHandler) {
	defer c.Close()
	sc := bufio.NewScanner(c)
	sc.Buffer(make([]byte, 0, 4096), maxRequestLine)
	for {
		_ = c.SetReadDeadline(time.Now().Add(connIdleTimeout))
		if !sc.Scan() {
			if err := sc.Err(); err != nil && !isTimeout(err) {
				log.Printf("remote listener: read request: %v", err)
			}
			return
		}
		reply := dispatch(strings.TrimRight(sc.Text(), "\r"), handler)
		_ = c.SetWriteDeadline(time.Now().Add(connIdleTimeout))
		if _, err := fmt.Fprint(c, reply+"\n"); err != nil {
			return
		}
	}
}

func dispatch(line string, handler MessageHandler) string {
	verb, rest, _ := strings.Cut(line, " ")
	switch verb {
	case "PING":
		return "PONG"
	case "OPEN":
		handler.HandleCommandLineArguments(splitArgs(rest))
		return "OK"
	default:
		return fmt.Sprintf("ERROR: unknown request: %q", line)
	}
}

func splitArgs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\t")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
