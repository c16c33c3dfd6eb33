package game

// HarvestEntry is one extraction recorded against a star.
type HarvestEntry struct {
	PlayerID     string       `json:"playerId"`
	PlayerName   string       `json:"playerName"`
	ResourceType ResourceType `json:"resourceType"`
	Amount       int          `json:"amount"`
	Timestamp    int64        `json:"timestamp"`
}

// StarHarvest is server-side bookkeeping per star. It is not checked against
// the star's remaining resources; clients own depletion.
type StarHarvest struct {
	Totals  map[ResourceType]int
	History []HarvestEntry // newest first, at most HarvestHistoryLimit
}

func (h *StarHarvest) record(e HarvestEntry) {
	if h.Totals == nil {
		h.Totals = make(map[ResourceType]int)
	}
	h.Totals[e.ResourceType] += e.Amount
	h.History = append([]HarvestEntry{e}, h.History...)
	if len(h.History) > HarvestHistoryLimit {
		h.History = h.History[:HarvestHistoryLimit]
	}
}
