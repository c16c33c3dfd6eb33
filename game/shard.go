package game

import "sort"

// NexusShard is a per-star collectible. Once Activated it never reverts.
type NexusShard struct {
	StarID           string       `json:"starId"`
	RequiredResource ResourceType `json:"requiredResource,omitempty"`
	Activated        bool         `json:"activated"`
}

type ShardSet struct {
	shards map[string]*NexusShard
}

func NewShardSet() *ShardSet {
	return &ShardSet{shards: make(map[string]*NexusShard)}
}

// Register adds a shard for starID if it is not already known. A known shard
// keeps its activation state.
func (s *ShardSet) Register(starID string, res ResourceType) {
	if starID == "" {
		return
	}
	if sh, ok := s.shards[starID]; ok {
		if sh.RequiredResource == "" {
			sh.RequiredResource = res
		}
		return
	}
	s.shards[starID] = &NexusShard{StarID: starID, RequiredResource: res}
}

// Activate marks the shard on starID as activated, registering it on first
// sight. changed is false when it was already active.
func (s *ShardSet) Activate(starID string, res ResourceType) (changed bool) {
	if starID == "" {
		return false
	}
	sh, ok := s.shards[starID]
	if !ok {
		sh = &NexusShard{StarID: starID, RequiredResource: res}
		s.shards[starID] = sh
	}
	if sh.Activated {
		return false
	}
	sh.Activated = true
	return true
}

func (s *ShardSet) Get(starID string) (NexusShard, bool) {
	sh, ok := s.shards[starID]
	if !ok {
		return NexusShard{}, false
	}
	return *sh, true
}

// AllActivated is the Nexus completion predicate. An empty set is not complete.
func (s *ShardSet) AllActivated() bool {
	if len(s.shards) == 0 {
		return false
	}
	for _, sh := range s.shards {
		if !sh.Activated {
			return false
		}
	}
	return true
}

func (s *ShardSet) Len() int { return len(s.shards) }

// All lists every known shard, sorted by star.
func (s *ShardSet) All() []NexusShard {
	out := make([]NexusShard, 0, len(s.shards))
	for _, sh := range s.shards {
		out = append(out, *sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StarID < out[j].StarID })
	return out
}

// Activated lists activated shards.
func (s *ShardSet) Activated() []NexusShard {
	out := make([]NexusShard, 0, len(s.shards))
	for _, sh := range s.shards {
		if sh.Activated {
			out = append(out, *sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StarID < out[j].StarID })
	return out
}

func (s *ShardSet) Reset() {
	s.shards = make(map[string]*NexusShard)
}
