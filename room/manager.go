package room

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"cosmic/protocol"
)

var ErrStopped = errors.New("room: stopped")

// Manager owns the single implicit room and its goroutine. Transports use it
// to hand connections and intents to the room without touching room state.
type Manager struct {
	mu      sync.Mutex
	room    *Room
	running bool
	stopped bool
	newID   func() string
}

func NewManager(opts Options) *Manager {
	return &Manager{
		room:  New(opts),
		newID: uuid.NewString,
	}
}

// Start launches the room loop once.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running || m.stopped {
		return
	}
	m.running = true
	go m.room.Run()
}

func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	m.room.Stop()
}

// Connect registers a transport connection and returns its opaque id. The id
// lives exactly as long as the connection.
func (m *Manager) Connect(c Conn) (string, error) {
	id := m.newID()
	if !m.room.Post(Connect{ID: id, Conn: c}) {
		return "", ErrStopped
	}
	return id, nil
}

func (m *Manager) Deliver(id string, env protocol.Envelope) {
	m.room.Post(Intent{ID: id, Env: env})
}

func (m *Manager) Disconnect(id string) {
	m.room.Post(Leave{ID: id})
}

// Info asks the room loop for a consistent view of its state.
func (m *Manager) Info(ctx context.Context) (Info, error) {
	reply := make(chan Info, 1)
	select {
	case m.room.Inbox <- Query{Reply: reply}:
	case <-ctx.Done():
		return Info{}, ctx.Err()
	case <-m.room.quit:
		return Info{}, ErrStopped
	}
	select {
	case info := <-reply:
		return info, nil
	case <-ctx.Done():
		return Info{}, ctx.Err()
	case <-m.room.quit:
		return Info{}, ErrStopped
	}
}
