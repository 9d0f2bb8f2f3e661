package status

import (
	"context"
	"errors"
	"strings"

	"dominion/internal/app/pending"
	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"
)

var ErrInvalidRequest = errors.New("invalid status request")

// UseCase serves read views. Reads go through the pending service so legacy
// payloads are folded on first read.
type UseCase struct {
	Pending     pending.Service
	Territories ports.TerritoryRepository
}

func (u UseCase) Faction(ctx context.Context, req FactionRequest) (FactionResponse, error) {
	if strings.TrimSpace(req.FactionID) == "" {
		return FactionResponse{}, ErrInvalidRequest
	}
	f, err := u.Pending.FoldFaction(ctx, req.FactionID)
	if err != nil {
		return FactionResponse{}, err
	}
	owned, err := u.Territories.ListByOwner(ctx, f.ID)
	if err != nil {
		return FactionResponse{}, err
	}
	ids := make([]string, 0, len(owned))
	for _, t := range owned {
		ids = append(ids, t.ID)
	}
	return FactionResponse{Faction: f, TerritoryIDs: ids}, nil
}

func (u UseCase) Territory(ctx context.Context, territoryID string) (TerritoryResponse, error) {
	if strings.TrimSpace(territoryID) == "" {
		return TerritoryResponse{}, ErrInvalidRequest
	}
	t, err := u.Pending.FoldTerritory(ctx, territoryID)
	if err != nil {
		return TerritoryResponse{}, err
	}
	return TerritoryResponse{Territory: t, Stage: t.Integration.Stage()}, nil
}

// Log returns the most recent entries first.
func (u UseCase) Log(ctx context.Context, req LogRequest) (LogResponse, error) {
	if strings.TrimSpace(req.FactionID) == "" {
		return LogResponse{}, ErrInvalidRequest
	}
	f, err := u.Pending.Factions.GetByID(ctx, req.FactionID)
	if err != nil {
		return LogResponse{}, err
	}
	limit := req.Limit
	if limit <= 0 || limit > campaign.ActivityLogCap {
		limit = campaign.ActivityLogCap
	}
	out := make([]campaign.LogEntry, 0, limit)
	for i := len(f.Log) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.Log[i])
	}
	return LogResponse{Entries: out}, nil
}
