// Package transport provides the transport layer for Yeelight communication
package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// TCPTransport implements the newline-framed Yeelight transport over TCP
type TCPTransport struct {
	addr         string
	conn         net.Conn
	reader       *bufio.Reader
	mu           sync.RWMutex
	partial      []byte
	readTimeout  time.Duration
	writeTimeout time.Duration
	closed       bool
}

// NewTCPTransport creates a new TCP transport for the given device address.
// The address may omit the port, in which case defaultPort is used.
func NewTCPTransport(addr string, defaultPort int) *TCPTransport {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(defaultPort))
	}
	return &TCPTransport{
		addr:         addr,
		readTimeout:  3 * time.Second,
		writeTimeout: 3 * time.Second,
	}
}

// SetReadTimeout sets the read timeout
func (t *TCPTransport) SetReadTimeout(d time.Duration) {
	t.mu.Lock()
	t.readTimeout = d
	t.mu.Unlock()
}

// SetWriteTimeout sets the write timeout
func (t *TCPTransport) SetWriteTimeout(d time.Duration) {
	t.mu.Lock()
	t.writeTimeout = d
	t.mu.Unlock()
}

// Open dials the device
func (t *TCPTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil && !t.closed {
		return nil
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.addr, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetKeepAlive(true)
		tc.SetKeepAlivePeriod(30 * time.Second)
	}

	t.conn = conn
	t.reader = bufio.NewReader(conn)
	t.partial = nil
	t.closed = false
	return nil
}

// Close closes the connection
func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil || t.closed {
		return nil
	}

	t.closed = true
	return t.conn.Close()
}

// RemoteAddr returns the device address
func (t *TCPTransport) RemoteAddr() net.Addr {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.conn == nil {
		return nil
	}
	return t.conn.RemoteAddr()
}

// Send writes one protocol line to the device
func (t *TCPTransport) Send(ctx context.Context, data []byte) error {
	t.mu.RLock()
	conn := t.conn
	writeTimeout := t.writeTimeout
	t.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("transport not open")
	}

	// Set deadline from context or default timeout
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeTimeout)
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	n, err := conn.Write(data)
	if err != nil {
		return fmt.Errorf("write TCP: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("partial write: %d of %d bytes", n, len(data))
	}

	return nil
}

// ReceiveLine reads one protocol line from the device
func (t *TCPTransport) ReceiveLine(ctx context.Context) ([]byte, error) {
	t.mu.RLock()
	conn := t.conn
	reader := t.reader
	readTimeout := t.readTimeout
	t.mu.RUnlock()

	if conn == nil {
		return nil, fmt.Errorf("transport not open")
	}

	// Set deadline from context or default timeout
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(readTimeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	line, err := reader.ReadBytes('\n')
	if err != nil {
		// ReadBytes hands back whatever it consumed before the error.
		// Keep those bytes so a line split across read deadlines is
		// completed on a later call instead of losing its prefix.
		if len(line) > 0 {
			t.mu.Lock()
			t.partial = append(t.partial, line...)
			t.mu.Unlock()
		}
		return nil, err
	}

	t.mu.Lock()
	if len(t.partial) > 0 {
		line = append(t.partial, line...)
		t.partial = nil
	}
	t.mu.Unlock()

	return line, nil
}

// ReceiveLineWithTimeout reads one line with a specific timeout
func (t *TCPTransport) ReceiveLineWithTimeout(timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return t.ReceiveLine(ctx)
}

// IsClosed returns true if the transport is closed
func (t *TCPTransport) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}
