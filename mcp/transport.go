package mcp

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Transport identifies the socket kind used to reach the PLC.
type Transport string

const (
	TransportTCP Transport = "tcp"
	TransportUDP Transport = "udp"
)

// transport wraps a single net.Conn to a PLC, grounded on the teacher's
// client3E (tcpAddr + *net.TCPConn held on the client) generalized to
// TCP and UDP the way GoAethereal-modbus/config.go::connection
// dispatches on cfg.Kind.
type transport struct {
	kind    Transport
	addr    string
	timeout time.Duration
	conn    net.Conn
}

func newTransport(kind Transport, addr string, timeout time.Duration) *transport {
	return &transport{kind: kind, addr: addr, timeout: timeout}
}

// connect dials the PLC, honoring ctx cancellation during the dial.
func (t *transport) connect(ctx context.Context) error {
	dialer := net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, string(t.kind), t.addr)
	if err != nil {
		return &ConnectError{Message: fmt.Sprintf("failed to connect to %s", t.addr), Cause: err}
	}
	t.conn = conn
	return nil
}

// send writes the whole frame, or returns a ConnectError on failure.
func (t *transport) send(data []byte) error {
	if t.conn == nil {
		return &ConnectError{Message: "not connected"}
	}
	if t.timeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
			return &ConnectError{Message: "failed to set write deadline", Cause: err}
		}
	}
	if _, err := t.conn.Write(data); err != nil {
		return &ConnectError{Message: "send failed", Cause: err}
	}
	return nil
}

// recv reads one response frame into a fixed-size buffer, mirroring the
// teacher's one-shot conn.Read call per command.
func (t *transport) recv() ([]byte, error) {
	if t.conn == nil {
		return nil, &ConnectError{Message: "not connected"}
	}
	if t.timeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
			return nil, &ConnectError{Message: "failed to set read deadline", Cause: err}
		}
	}
	buf := make([]byte, 4096)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, &ConnectError{Message: "recv failed", Cause: err}
	}
	return buf[:n], nil
}

// close releases the underlying connection, if any. Safe to call more
// than once.
func (t *transport) close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
