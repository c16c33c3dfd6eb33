package game

const (
	PlayerSpeed          = 5.0  // units per frame for the local rocket
	MoveEpsilon          = 0.01 // velocity component below this counts as stationary
	MovementThreshold    = 0.5  // minimum displacement recorded in a position history
	RemoteLeadFactor     = 5.0  // frames of velocity used to lead a moving remote player
	RemoteLerp           = 0.2  // fraction of the remaining gap closed per frame for remote players
	ReconcileEpsilon     = 25.0 // self echo divergence tolerated without correction
	ReconcileFrames      = 10   // frames a correction is spread over
	SentHistorySize      = 32   // recently sent positions kept for echo matching
	SpecialtyBonus       = 1.5  // harvest multiplier for a rocket's specialised resource
	HarvestHistoryLimit  = 5    // entries kept per star
	PositionHistoryLimit = 5    // previous positions kept per player
	PingLifetimeSeconds  = 5    // client-side expiry of ping markers
	ShardActivationCost  = 50   // units of the required resource spent to activate a shard
	MinNameLength        = 2
)

// DefaultTargets are the Galactic Hub goals per resource.
var DefaultTargets = map[ResourceType]int{
	Energy:  500,
	Water:   200,
	Organic: 300,
	Mineral: 400,
}
