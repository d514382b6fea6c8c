package connection

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/kvmesh-go/pkg/resp"
)

// ErrNotConnected is returned when no server connection is open.
var ErrNotConnected = errors.New("not connected")

// Manager owns the current connection of a CLI session and redials it
// after a transport failure.
type Manager struct {
	addr    string
	timeout time.Duration
	client  *Client
}

// NewManager creates a manager for addr. It does not dial yet.
func NewManager(addr string, timeout time.Duration) *Manager {
	return &Manager{addr: addr, timeout: timeout}
}

// Addr returns the target server address.
func (m *Manager) Addr() string {
	return m.addr
}

// Connect switches to addr, closing any previous connection.
func (m *Manager) Connect(ctx context.Context, addr string) error {
	c, err := Dial(ctx, addr, m.timeout)
	if err != nil {
		return err
	}
	m.Disconnect()
	m.addr = addr
	m.client = c
	return nil
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() {
	if m.client != nil {
		_ = m.client.Close()
		m.client = nil
	}
}

// IsConnected returns true if a connection is open.
func (m *Manager) IsConnected() bool {
	return m.client != nil
}

// Do runs a command, dialing first when needed. After a transport error
// the connection is dropped so the next call redials.
func (m *Manager) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if m.client == nil {
		if m.addr == "" {
			return resp.Value{}, ErrNotConnected
		}
		if err := m.Connect(ctx, m.addr); err != nil {
			return resp.Value{}, err
		}
	}

	v, err := m.client.Do(ctx, args...)
	var serverErr *ServerError
	if err != nil && !errors.As(err, &serverErr) {
		m.Disconnect()
	}
	return v, err
}
