package remote

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const defaultClientTimeout = 2 * time.Second

// Ping checks that a remote listener answers on localhost:port.
func Ping(ctx context.Context, port int) error {
	reply, err := roundTrip(ctx, port, "PING")
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("unexpected ping reply %q", reply)
	}
	return nil
}

// SendOpen forwards args to the instance listening on localhost:port.
func SendOpen(ctx context.Context, port int, args []string) error {
	if len(args) == 0 {
		return errors.New("nothing to send")
	}
	for _, arg := range args {
		if strings.ContainsAny(arg, "\t\n\r") {
			return fmt.Errorf("argument %q contains a control character", arg)
		}
	}
	reply, err := roundTrip(ctx, port, "OPEN "+strings.Join(args, "\t"))
	if err != nil {
		return err
	}
	if reply != "OK" {
		return fmt.Errorf("remote instance refused request: %s", reply)
	}
	return nil
}

func roundTrip(ctx context.Context, port int, request string) (string, error) {
	if !IsUserPort(port) {
		return "", fmt.Errorf("invalid remote port %d", port)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultClientTimeout)
		defer cancel()
	}

	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err != nil {
		return "", fmt.Errorf("connect to remote listener: %w", err)
	}
	defer c.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.SetDeadline(deadline)
	}

	if _, err := fmt.Fprint(c, request+"\n"); err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimSpace(line), nil
}
