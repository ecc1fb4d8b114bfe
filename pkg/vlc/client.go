package vlc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 4212
	DefaultTimeout = 1500 * time.Millisecond

	// idleGap ends a read once VLC has sent something and then gone quiet.
	idleGap = 150 * time.Millisecond
)

var (
	// ErrUnreachable means nothing accepted the connection; VLC is not
	// running or rc is not enabled.
	ErrUnreachable = errors.New("vlc rc unreachable")

	// ErrTimeout means the connection or the reply did not arrive in time.
	ErrTimeout = errors.New("vlc rc timed out")
)

// Client addresses one VLC rc listener. The zero value is not usable; use
// NewClient.
type Client struct {
	Addr    string
	Timeout time.Duration
}

// NewClient returns a client for host:port. Empty host and zero port fall
// back to the defaults.
func NewClient(host string, port int, timeout time.Duration) *Client {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		Addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		Timeout: timeout,
	}
}

// Do sends cmds on a single connection and returns everything VLC printed,
// banner included. If VLC printed nothing, status is sent once to force a
// reply.
func (c *Client) Do(ctx context.Context, cmds ...string) (string, error) {
	d := net.Dialer{Timeout: c.Timeout}
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: dial %s: %v", ErrTimeout, c.Addr, err)
		}
		return "", fmt.Errorf("%w: dial %s: %v", ErrUnreachable, c.Addr, err)
	}
	defer conn.Close()

	var buf bytes.Buffer

	// Banner or prompt, if VLC sends one.
	if err := c.drain(conn, &buf); err != nil {
		return buf.String(), err
	}

	for _, cmd := range cmds {
		if err := c.send(conn, cmd); err != nil {
			return buf.String(), err
		}
		if err := c.drain(conn, &buf); err != nil {
			return buf.String(), err
		}
	}

	if buf.Len() == 0 {
		if err := c.send(conn, CmdStatus); err != nil {
			return "", err
		}
		if err := c.drain(conn, &buf); err != nil {
			return buf.String(), err
		}
	}

	if buf.Len() == 0 {
		return "", fmt.Errorf("%w: no reply from %s", ErrTimeout, c.Addr)
	}

	return buf.String(), nil
}

func (c *Client) send(conn net.Conn, cmd string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(c.Timeout))
	if _, err := conn.Write([]byte(strings.TrimSpace(cmd) + "\n")); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: write %q: %v", ErrTimeout, cmd, err)
		}
		return fmt.Errorf("failed to write %q: %w", cmd, err)
	}
	return nil
}

// drain reads until the timeout, an idle gap after data or EOF. Timeouts are
// not errors here; the caller decides what an empty reply means.
func (c *Client) drain(conn net.Conn, buf *bytes.Buffer) error {
	chunk := make([]byte, 4096)
	_ = conn.SetReadDeadline(time.Now().Add(c.Timeout))

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			gap := idleGap
			if gap > c.Timeout {
				gap = c.Timeout
			}
			_ = conn.SetReadDeadline(time.Now().Add(gap))
		}
		if err != nil {
			if isTimeout(err) || errors.Is(err, net.ErrClosed) || isEOF(err) {
				return nil
			}
			return fmt.Errorf("failed to read reply: %w", err)
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
