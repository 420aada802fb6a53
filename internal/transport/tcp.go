package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"chesslink/internal/domain"
)

// DefaultPort is used when an address has no port component.
const DefaultPort = 5555

// DialTimeout bounds a connection attempt.
const DialTimeout = 30 * time.Second

// Listen binds addr, accepts a single peer connection, closes the listener
// and returns the connection. Cancelling ctx closes the listener and aborts
// the accept.
func Listen(ctx context.Context, addr string) (net.Conn, error) {
	lc := net.ListenConfig{}
	l, err := lc.Listen(ctx, "tcp", WithDefaultPort(addr))
	if err != nil {
		return nil, fmt.Errorf("%w: listen %s: %v", domain.ErrTransport, addr, err)
	}
	defer l.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			l.Close() // unblocks Accept
		case <-done:
		}
	}()

	conn, err := l.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: accept: %v", domain.ErrTransport, err)
	}
	return conn, nil
}

// Dial connects to the peer at addr, bounded by DialTimeout and ctx.
func Dial(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{Timeout: DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", WithDefaultPort(addr))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: dial %s: %v", domain.ErrTransport, addr, err)
	}
	return conn, nil
}

// WithDefaultPort appends the default port when addr lacks one. Plain IPv6
// addresses are bracketed as needed.
func WithDefaultPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
}
