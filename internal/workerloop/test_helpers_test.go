package workerloop

import (
	"net"
	"strings"
	"sync"
	"time"
)

// mockConn implements net.Conn for testing: a strings.Builder stands
// in for the socket so writeResponse can be exercised without a real
// connection.
type mockConn struct {
	writeData strings.Builder
	closed    bool
	mu        sync.Mutex
}

func (m *mockConn) Read(b []byte) (int, error)  { return 0, nil }
func (m *mockConn) Write(b []byte) (int, error) { return m.writeData.Write(b) }
func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
func (m *mockConn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 8080}
}
func (m *mockConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}
}
func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }

func (m *mockConn) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeData.String()
}
