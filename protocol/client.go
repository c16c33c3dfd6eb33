package protocol

import "cosmic/game"

// Intent payloads coming in from the client. Pointer fields are required
// unless noted; a nil required field makes the intent malformed.

type PlayerJoin struct {
	PlayerName string `json:"playerName"`
	RocketType string `json:"rocketType"`
}

type PlayerMove struct {
	Position  *game.Vec2 `json:"position"`
	Velocity  *game.Vec2 `json:"velocity,omitempty"`  // optional, zero when absent
	Direction *float64   `json:"direction,omitempty"` // optional, zero when absent
}

type PlayerStopMove struct {
	Position *game.Vec2 `json:"position,omitempty"` // optional, keeps last known when absent
}

type HarvestResource struct {
	StarID       string            `json:"starId"`
	ResourceType game.ResourceType `json:"resourceType"`
	Amount       *int              `json:"amount"`
}

type ContributeToHub struct {
	ResourceType game.ResourceType `json:"resourceType"`
	Amount       *int              `json:"amount"`
}

type ActivateNexusShard struct {
	StarID       string            `json:"starId"`
	StarName     string            `json:"starName,omitempty"`
	ResourceType game.ResourceType `json:"resourceType,omitempty"`
}

type AddPing struct {
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
	Message string   `json:"message"`
}

// Empty is sent for intents that carry no data (startGame, requestGameState, pingServer).
type Empty struct{}
