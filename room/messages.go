package room

import (
	"cosmic/game"
	"cosmic/protocol"
)

type Conn interface {
	Send([]byte) error
	Close() error
}

// Connect: issued once per transport connection, before any intent.
type Connect struct {
	ID   string
	Conn Conn
}

// Intent: one decoded client frame.
type Intent struct {
	ID  string
	Env protocol.Envelope
}

// Leave: issued on disconnect or heartbeat timeout.
type Leave struct {
	ID string
}

// Query: read-only view of the room for HTTP endpoints.
type Query struct {
	Reply chan<- Info
}

type Info struct {
	Players     int                             `json:"players"`
	Connections int                             `json:"connections"`
	Phase       game.Phase                      `json:"phase"`
	Started     bool                            `json:"started"`
	HostID      string                          `json:"hostId,omitempty"`
	HubProgress map[game.ResourceType]game.Goal `json:"hubProgress"`
	HubComplete bool                            `json:"hubComplete"`
}
