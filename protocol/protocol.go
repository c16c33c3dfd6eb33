package protocol

import (
	"encoding/json"
)

// Client -> server intents.
const (
	MsgPlayerJoin         = "playerJoin"
	MsgRequestGameState   = "requestGameState"
	MsgStartGame          = "startGame"
	MsgPlayerMove         = "playerMove"
	MsgPlayerStopMove     = "playerStopMove"
	MsgHarvestResource    = "harvestResource"
	MsgContributeToHub    = "contributeToHub"
	MsgActivateNexusShard = "activateNexusShard"
	MsgAddPing            = "addPing"
	MsgPingServer         = "pingServer"
)

// Server -> client events.
const (
	MsgConnectionEstablished = "connectionEstablished"
	MsgPlayerJoined          = "playerJoined"
	MsgFullGameState         = "fullGameState"
	MsgGameStarted           = "gameStarted"
	MsgPlayerMoved           = "playerMoved"
	MsgPlayerStoppedMoving   = "playerStoppedMoving"
	MsgGameStateUpdate       = "gameStateUpdate"
	MsgResourceHarvested     = "resourceHarvested"
	MsgHarvestHistoryUpdate  = "harvestHistoryUpdate"
	MsgHubContribution       = "hubContribution"
	MsgHubComplete           = "hubComplete"
	MsgNexusShardActivated   = "nexusShardActivated"
	MsgPingPlaced            = "pingPlaced"
	MsgPlayerLeft            = "playerLeft"
	MsgNewHost               = "newHost"
	MsgPongServer            = "pongServer"
)

const (
	ClientFrameHz = 60 // client prediction/render loop
	SnapshotHz    = 1  // anti-drift gameStateUpdate
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"` // raw payload bytes
}
