package activity

import (
	"dominion/internal/app/pending"
	"dominion/internal/domain/campaign"
)

type Params struct {
	ToFactionID string `json:"to_faction_id,omitempty"`
	Category    string `json:"category,omitempty"`
	Amount      int    `json:"amount,omitempty"`
}

type Request struct {
	FactionID      string `json:"faction_id"`
	ActivityKey    string `json:"activity"`
	IdempotencyKey string `json:"idempotency_key"`
	TerritoryID    string `json:"territory_id,omitempty"`
	Params         Params `json:"params"`
}

type QueuedEffect struct {
	Target  pending.Target          `json:"target"`
	Effects campaign.PendingEffects `json:"effects"`
}

type Response struct {
	ActivityKey string               `json:"activity"`
	FactionID   string               `json:"faction_id"`
	Description string               `json:"description"`
	Paid        campaign.LedgerDelta `json:"paid"`
	Payment     *campaign.LogEntry   `json:"payment,omitempty"`
	Queued      []QueuedEffect       `json:"queued"`
	Entry       campaign.LogEntry    `json:"entry"`
	Replayed    bool                 `json:"replayed"`
}

type CatalogEntry struct {
	Key             string               `json:"key"`
	Label           string               `json:"label"`
	Cost            campaign.LedgerDelta `json:"cost"`
	TargetTerritory bool                 `json:"target_territory"`
}
