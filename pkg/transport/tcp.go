package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"fieldbus-engine/pkg/errors"
	"fieldbus-engine/pkg/logger"
)

// TCPTransport carries frames over a plain TCP connection.
// One instance serves exactly one channel; it is not safe for
// concurrent exchanges and the channel runtime never issues them.
type TCPTransport struct {
	address        string
	connectTimeout time.Duration

	mu   sync.Mutex
	conn net.Conn

	statsTracker
}

// NewTCPTransport creates a transport for the given host:port address
func NewTCPTransport(address string, connectTimeout time.Duration) *TCPTransport {
	if connectTimeout == 0 {
		connectTimeout = 5 * time.Second
	}
	return &TCPTransport{
		address:        address,
		connectTimeout: connectTimeout,
	}
}

// Connect dials the remote endpoint. An already-open connection is
// closed first so a reconnect always starts from a clean socket.
func (t *TCPTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}

	dialer := net.Dialer{Timeout: t.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.address)
	if err != nil {
		wrapped := errors.New("tcp.connect", errors.KindConnectionFailed, err)
		t.recordError(wrapped)
		return wrapped
	}

	t.conn = conn
	t.recordConnect()
	logger.LogDebug("tcp transport connected to %s", t.address)
	return nil
}

// Disconnect closes the connection if open
func (t *TCPTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// IsConnected reports whether a connection is currently open
func (t *TCPTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Send writes the full buffer to the socket
func (t *TCPTransport) Send(ctx context.Context, data []byte) (int, error) {
	conn := t.current()
	if conn == nil {
		return 0, errors.Newf("tcp.send", errors.KindConnectionLost, "not connected")
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Now().Add(t.connectTimeout))
	}

	n, err := conn.Write(data)
	if err != nil {
		t.dropConn(conn)
		wrapped := errors.New("tcp.send", errors.KindSendFailed, err)
		t.recordError(wrapped)
		return n, wrapped
	}

	t.recordSend(n)
	return n, nil
}

// Receive reads whatever bytes arrive within the timeout.
// A deadline expiry maps to a Timeout error, anything else drops the
// connection and maps to ConnectionLost.
func (t *TCPTransport) Receive(ctx context.Context, buf []byte, timeout time.Duration) (int, error) {
	conn := t.current()
	if conn == nil {
		return 0, errors.Newf("tcp.receive", errors.KindConnectionLost, "not connected")
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetReadDeadline(deadline)

	n, err := conn.Read(buf)
	if n > 0 {
		t.recordReceive(n)
	}
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			if n > 0 {
				// Partial data before the deadline is still data;
				// the caller decides whether the frame is complete.
				return n, nil
			}
			return 0, errors.New("tcp.receive", errors.KindTimeout, err)
		}
		t.dropConn(conn)
		wrapped := errors.New("tcp.receive", errors.KindConnectionLost, err)
		t.recordError(wrapped)
		return n, wrapped
	}

	return n, nil
}

// Stats returns a snapshot of the transport counters
func (t *TCPTransport) Stats() Stats {
	return t.snapshot()
}

func (t *TCPTransport) current() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

// dropConn closes and forgets a failed connection, but only if it is
// still the active one; a concurrent Connect may already have replaced it.
func (t *TCPTransport) dropConn(conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == conn {
		_ = t.conn.Close()
		t.conn = nil
	}
}
