package status

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dominion/internal/adapter/repo/memory"
	"dominion/internal/app/pending"
	"dominion/internal/domain/campaign"
)

func newUseCase(store *memory.Store) UseCase {
	return UseCase{
		Pending: pending.Service{
			TxManager:   memory.NewTxManager(store),
			Factions:    memory.NewFactionRepo(store),
			Territories: memory.NewTerritoryRepo(store),
		},
		Territories: memory.NewTerritoryRepo(store),
	}
}

func TestFaction_FoldsOnReadAndListsTerritories(t *testing.T) {
	store := memory.NewStore()
	f := campaign.NewFaction("f1", "North")
	f.LegacyPending = json.RawMessage(`{"vpDelta":1}`)
	store.SeedFaction(f)
	tr := campaign.NewTerritory("t1", false)
	tr.OwnerID = "f1"
	store.SeedTerritory(tr)

	resp, err := newUseCase(store).Faction(context.Background(), FactionRequest{FactionID: "f1"})
	if err != nil {
		t.Fatalf("faction: %v", err)
	}
	if resp.Faction.Pending == nil || resp.Faction.Pending.Victory.VP != 1 || resp.Faction.LegacyPending != nil {
		t.Fatalf("expected folded buffer, got %+v", resp.Faction)
	}
	if len(resp.TerritoryIDs) != 1 || resp.TerritoryIDs[0] != "t1" {
		t.Fatalf("unexpected territories: %v", resp.TerritoryIDs)
	}
}

func TestTerritory_ReportsStage(t *testing.T) {
	store := memory.NewStore()
	tr := campaign.NewTerritory("t1", true)
	tr.Integration.Progress = 5
	store.SeedTerritory(tr)

	resp, err := newUseCase(store).Territory(context.Background(), "t1")
	if err != nil {
		t.Fatalf("territory: %v", err)
	}
	if resp.Stage != campaign.StageSettled {
		t.Fatalf("expected settled, got %s", resp.Stage)
	}
}

func TestLog_NewestFirstWithLimit(t *testing.T) {
	store := memory.NewStore()
	f := campaign.NewFaction("f1", "North")
	for i := 0; i < 5; i++ {
		f.AppendLog(campaign.NewLogEntry(campaign.LogActivity, time.Unix(int64(i), 0), "m", nil))
	}
	store.SeedFaction(f)

	resp, err := newUseCase(store).Log(context.Background(), LogRequest{FactionID: "f1", Limit: 2})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(resp.Entries) != 2 || resp.Entries[0].OccurredAt.Unix() != 4 {
		t.Fatalf("unexpected entries: %+v", resp.Entries)
	}
}

func TestUseCase_RejectsEmptyIDs(t *testing.T) {
	uc := newUseCase(memory.NewStore())
	if _, err := uc.Faction(context.Background(), FactionRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := uc.Territory(context.Background(), " "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
