package status

import "dominion/internal/domain/campaign"

type FactionRequest struct {
	FactionID string
}

type FactionResponse struct {
	Faction      campaign.Faction `json:"faction"`
	TerritoryIDs []string         `json:"territory_ids"`
}

type TerritoryResponse struct {
	Territory campaign.Territory        `json:"territory"`
	Stage     campaign.IntegrationStage `json:"stage"`
}

type LogRequest struct {
	FactionID string
	Limit     int
}

type LogResponse struct {
	Entries []campaign.LogEntry `json:"entries"`
}
