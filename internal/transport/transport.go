// Package transport is the raw byte transport under the mission layer: one
// TCP connection with per-operation deadlines and exact-length reads.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

var (
	ErrTimeout      = errors.New("transport: operation timed out")
	ErrDisconnected = errors.New("transport: server disconnected")
)

// Config defines dial and I/O deadlines for one connection.
type Config struct {
	Address        string
	ConnectTimeout time.Duration
	IOTimeout      time.Duration
}

func (c Config) WithDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 2 * time.Second
	}
	if c.IOTimeout <= 0 {
		c.IOTimeout = 2 * time.Second
	}
	return c
}

// Conn is one live client connection. Close is idempotent.
type Conn struct {
	conn      net.Conn
	ioTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Dial opens a TCP connection per cfg.
func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	cfg = cfg.WithDefaults()
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	raw, err := dialer.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", cfg.Address, err)
	}
	return &Conn{conn: raw, ioTimeout: cfg.IOTimeout}, nil
}

// RemoteAddr reports the peer address for logging.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Send writes b fully under the write deadline.
func (c *Conn) Send(b []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.ioTimeout)); err != nil {
		return fmt.Errorf("transport: set write deadline: %w", err)
	}
	if _, err := c.conn.Write(b); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: send", ErrTimeout)
		}
		return fmt.Errorf("transport: send: %w", err)
	}
	return nil
}

// ReceiveExact reads exactly n bytes under the read deadline. A stream that
// ends before n bytes arrive is reported as ErrDisconnected.
func (c *Conn) ReceiveExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.ioTimeout)); err != nil {
		return nil, fmt.Errorf("transport: set read deadline: %w", err)
	}
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		switch {
		case isTimeout(err):
			return nil, fmt.Errorf("%w: receive", ErrTimeout)
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil, fmt.Errorf("%w: receive", ErrDisconnected)
		default:
			return nil, fmt.Errorf("transport: receive: %w", err)
		}
	}
	return buf, nil
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
