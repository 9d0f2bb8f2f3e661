package outcome

import (
	"context"
	"errors"
	"testing"
	"time"

	"dominion/internal/adapter/repo/memory"
	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"
)

type failingTerritories struct {
	ports.TerritoryRepository
}

func (failingTerritories) SaveWithVersion(context.Context, campaign.Territory, int64) error {
	return errors.New("disk full")
}

func newResolver(t *testing.T, store *memory.Store) Resolver {
	t.Helper()
	r, err := NewResolver(Resolver{
		TxManager:   memory.NewTxManager(store),
		Factions:    memory.NewFactionRepo(store),
		Territories: memory.NewTerritoryRepo(store),
		Now:         func() time.Time { return time.Unix(1700000000, 0) },
	})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return r
}

func seed(store *memory.Store, progress int) {
	store.SeedFaction(campaign.NewFaction("f1", "North"))
	tr := campaign.NewTerritory("t1", false)
	tr.OwnerID = "f1"
	tr.Status = campaign.StatusOccupied
	tr.Integration.Progress = progress
	store.SeedTerritory(tr)
}

func TestApply_SaltTheEarthResetsProgressDespiteQueuedAdds(t *testing.T) {
	store := memory.NewStore()
	seed(store, 5)
	tr, _ := memory.NewTerritoryRepo(store).GetByID(context.Background(), "t1")
	tr.Pending = &campaign.PendingEffects{Mods: campaign.Mods{Defense: 2}}
	store.SeedTerritory(tr)

	r := newResolver(t, store)
	resp, err := r.Apply(context.Background(), Request{FactionID: "f1", TerritoryID: "t1", Outcome: campaign.OutcomeSaltTheEarth, Tier: campaign.TierStandard})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	got, _ := memory.NewTerritoryRepo(store).GetByID(context.Background(), "t1")
	if got.Integration.Progress != 0 || got.Status != campaign.StatusScorched {
		t.Fatalf("expected progress 0 and scorched, got %d %s", got.Integration.Progress, got.Status)
	}
	if got.Pending == nil || got.Pending.Mods.Defense != 2 {
		t.Fatalf("outcome must leave the pending buffer alone")
	}
	f, _ := memory.NewFactionRepo(store).GetByID(context.Background(), "f1")
	if len(f.Log) != 1 || f.Log[0].ID != resp.Entry.ID || f.Log[0].Payload["outcome"] != campaign.OutcomeSaltTheEarth {
		t.Fatalf("expected audit entry with outcome, got %+v", f.Log)
	}
}

func TestApply_PreconditionFailuresHaveNoSideEffects(t *testing.T) {
	store := memory.NewStore()
	seed(store, 2)
	store.SeedFaction(campaign.NewFaction("f2", "South"))
	r := newResolver(t, store)

	cases := []struct {
		req  Request
		want error
	}{
		{Request{FactionID: "f1", TerritoryID: "t1", Outcome: "feast", Tier: 1}, campaign.ErrUnknownOutcome},
		{Request{FactionID: "f2", TerritoryID: "t1", Outcome: campaign.OutcomeJustice, Tier: 1}, campaign.ErrNotOwner},
		{Request{FactionID: "f1", TerritoryID: "t1", Outcome: campaign.OutcomeIntegration, Tier: 1}, campaign.ErrTierNotAllowed},
		{Request{FactionID: "f1", TerritoryID: "nowhere", Outcome: campaign.OutcomeJustice, Tier: 1}, ports.ErrNotFound},
		{Request{FactionID: "f1", Outcome: campaign.OutcomeJustice, Tier: 1}, ErrInvalidRequest},
	}
	for _, tc := range cases {
		if _, err := r.Apply(context.Background(), tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%+v: expected %v, got %v", tc.req, tc.want, err)
		}
	}
	f, _ := memory.NewFactionRepo(store).GetByID(context.Background(), "f1")
	tr, _ := memory.NewTerritoryRepo(store).GetByID(context.Background(), "t1")
	if len(f.Log) != 0 || f.Version != 1 || tr.Version != 1 || tr.Integration.Progress != 2 {
		t.Fatalf("precondition failures wrote state: faction=%+v territory=%+v", f, tr)
	}
}

func TestApply_ScorchedTerritoryIsTerminal(t *testing.T) {
	store := memory.NewStore()
	seed(store, 3)
	r := newResolver(t, store)

	if _, err := r.Apply(context.Background(), Request{FactionID: "f1", TerritoryID: "t1", Outcome: campaign.OutcomeSaltTheEarth, Tier: campaign.TierMinor}); err != nil {
		t.Fatalf("salt: %v", err)
	}
	_, err := r.Apply(context.Background(), Request{FactionID: "f1", TerritoryID: "t1", Outcome: campaign.OutcomeJustice, Tier: campaign.TierMajor})
	if !errors.Is(err, campaign.ErrTerritoryScorched) {
		t.Fatalf("expected scorched rejection, got %v", err)
	}
}

func TestApply_PersistenceFailureRollsBack(t *testing.T) {
	store := memory.NewStore()
	seed(store, 1)
	r := newResolver(t, store)
	r.Territories = failingTerritories{TerritoryRepository: memory.NewTerritoryRepo(store)}

	if _, err := r.Apply(context.Background(), Request{FactionID: "f1", TerritoryID: "t1", Outcome: campaign.OutcomeJustice, Tier: campaign.TierMajor}); err == nil {
		t.Fatalf("expected persistence error")
	}
	f, _ := memory.NewFactionRepo(store).GetByID(context.Background(), "f1")
	if len(f.Log) != 0 || f.Tracks.Loyalty != campaign.StartingTrack {
		t.Fatalf("faction changed after failed write: %+v", f)
	}
}

func TestNewResolver_RejectsInvalidTable(t *testing.T) {
	table := campaign.DefaultOutcomeTable()
	rule := table[campaign.OutcomeRetribution]
	eff := rule.Effects[campaign.TierMajor]
	eff.Integration = campaign.IntegrationDirective{Kind: campaign.IntegrationReset}
	rule.Effects[campaign.TierMajor] = eff
	table[campaign.OutcomeRetribution] = rule

	if _, err := NewResolver(Resolver{Table: table}); !errors.Is(err, campaign.ErrResetOutsideSalt) {
		t.Fatalf("expected reset rejection, got %v", err)
	}
}

func TestRules_ListsFiveOutcomes(t *testing.T) {
	r := newResolver(t, memory.NewStore())
	rules := r.Rules()
	if len(rules) != 5 || rules[4].Key != campaign.OutcomeSaltTheEarth {
		t.Fatalf("unexpected rules: %+v", rules)
	}
}
