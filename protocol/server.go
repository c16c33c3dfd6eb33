package protocol

import "cosmic/game"

type ConnectionEstablished struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// PlayerInfo is the canonical wire shape of a player record.
type PlayerInfo struct {
	ID            string                    `json:"id"`
	Name          string                    `json:"name"`
	IsHost        bool                      `json:"isHost"`
	RocketType    game.RocketType           `json:"rocketType"`
	Position      game.Vec2                 `json:"position"`
	Velocity      game.Vec2                 `json:"velocity"`
	Direction     float64                   `json:"direction"`
	IsMoving      bool                      `json:"isMoving"`
	Inventory     map[game.ResourceType]int `json:"inventory,omitempty"`
	Contributions map[game.ResourceType]int `json:"contributions,omitempty"`

	PreviousPositions []game.TimedPosition `json:"previousPositions,omitempty"`
}

// FullGameState is the snapshot sent on join and on requestGameState.
type FullGameState struct {
	Players       []PlayerInfo                    `json:"players"`
	HubProgress   map[game.ResourceType]game.Goal `json:"hubProgress"`
	IsGameStarted bool                            `json:"isGameStarted"`
	HubComplete   bool                            `json:"hubComplete,omitempty"`
	Phase         game.Phase                      `json:"phase"`
	NexusShards   []game.NexusShard               `json:"nexusShards,omitempty"`
	Timestamp     int64                           `json:"timestamp"`
}

type PlayerMoved struct {
	ID        string    `json:"id"`
	Position  game.Vec2 `json:"position"`
	Velocity  game.Vec2 `json:"velocity"`
	Direction float64   `json:"direction"`
	IsMoving  bool      `json:"isMoving"`
	Timestamp int64     `json:"timestamp"`
}

type PlayerStoppedMoving struct {
	ID        string    `json:"id"`
	Position  game.Vec2 `json:"position"`
	Timestamp int64     `json:"timestamp"`
}

type PositionSnapshot struct {
	Position  game.Vec2 `json:"position"`
	Velocity  game.Vec2 `json:"velocity"`
	Direction float64   `json:"direction"`
	IsMoving  bool      `json:"isMoving"`
}

type GameStateUpdate struct {
	PlayerPositions map[string]PositionSnapshot `json:"playerPositions"`
	Timestamp       int64                       `json:"timestamp"`
}

type ResourceHarvested struct {
	ID           string            `json:"id"`
	StarID       string            `json:"starId"`
	ResourceType game.ResourceType `json:"resourceType"`
	Amount       int               `json:"amount"`
}

type HarvestHistoryUpdate struct {
	StarID  string                    `json:"starId"`
	History []game.HarvestEntry       `json:"history"`
	Totals  map[game.ResourceType]int `json:"totals"`
}

// HubContribution carries the applied (post-clamp) amount and the new
// authoritative total so every mirror, the sender's included, can settle.
type HubContribution struct {
	PlayerID     string                          `json:"playerId"`
	PlayerName   string                          `json:"playerName"`
	ResourceType game.ResourceType               `json:"resourceType"`
	Amount       int                             `json:"amount"`
	Requested    int                             `json:"requested"`
	NewTotal     int                             `json:"newTotal"`
	HubProgress  map[game.ResourceType]game.Goal `json:"hubProgress"`
}

type HubComplete struct {
	Timestamp int64 `json:"timestamp"`
}

type GameStarted struct {
	Timestamp int64 `json:"timestamp"`
}

type NexusShardActivated struct {
	StarID       string            `json:"starId"`
	StarName     string            `json:"starName,omitempty"`
	ResourceType game.ResourceType `json:"resourceType,omitempty"`
	PlayerID     string            `json:"playerId"`
}

type PingPlaced struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Message   string  `json:"message"`
	Sender    string  `json:"sender"`
	SenderID  string  `json:"senderId"`
	Timestamp int64   `json:"timestamp"`
}

type PlayerLeft struct {
	ID string `json:"id"`
}

type NewHost struct {
	ID string `json:"id"`
}

type PongServer struct {
	Status      string `json:"status"`
	Timestamp   int64  `json:"timestamp"`
	PlayerCount int    `json:"playerCount"`
}
