package campaign

import (
	"testing"
	"time"
)

func TestIntegration_AddAndRaiseNeverRegress(t *testing.T) {
	stamp := IntegrationStamp{At: time.Unix(100, 0), Outcome: OutcomeJustice, Tier: TierMinor}
	var it Integration

	it.Add(4, stamp)
	if it.Progress != 4 {
		t.Fatalf("expected progress 4, got %d", it.Progress)
	}
	if changed := it.RaiseAtLeast(2, stamp); changed || it.Progress != 4 {
		t.Fatalf("raise below current must be a no-op, got %d", it.Progress)
	}
	it.Add(10, stamp)
	if it.Progress != MaxProgress {
		t.Fatalf("expected clamp at %d, got %d", MaxProgress, it.Progress)
	}
	if len(it.History) != 2 {
		t.Fatalf("expected only effective changes in history, got %d", len(it.History))
	}
}

func TestIntegration_ResetAndHistoryCap(t *testing.T) {
	stamp := IntegrationStamp{At: time.Unix(100, 0), Outcome: OutcomeSaltTheEarth, Tier: TierMajor}
	var it Integration
	for i := 0; i < IntegrationHistoryCap+5; i++ {
		it.Add(1, stamp)
		it.Reset(stamp)
	}
	if it.Progress != 0 {
		t.Fatalf("expected reset to zero, got %d", it.Progress)
	}
	if len(it.History) != IntegrationHistoryCap {
		t.Fatalf("expected history capped at %d, got %d", IntegrationHistoryCap, len(it.History))
	}
	last := it.History[len(it.History)-1]
	if last.Before != 1 || last.After != 0 {
		t.Fatalf("unexpected last change: %+v", last)
	}
}

func TestStageFor(t *testing.T) {
	cases := map[int]IntegrationStage{
		0: StageWild, 1: StageOutpost, 2: StageOutpost, 3: StageDeveloping,
		4: StageDeveloping, 5: StageSettled, 6: StageIntegrated,
	}
	for progress, want := range cases {
		if got := StageFor(progress); got != want {
			t.Fatalf("progress %d: got %s want %s", progress, got, want)
		}
	}
}

func TestSyncSettlement_OnlyWilderness(t *testing.T) {
	wild := NewTerritory("w", true)
	wild.Integration.Add(3, IntegrationStamp{})
	wild.syncSettlement(0, 3)
	if wild.PopulationTier != 2 || wild.SettlementSize != "village" {
		t.Fatalf("unexpected wilderness settlement: tier=%d size=%s", wild.PopulationTier, wild.SettlementSize)
	}

	city := NewTerritory("c", false)
	city.PopulationTier = 4
	city.SettlementSize = "city"
	city.syncSettlement(0, 3)
	if city.PopulationTier != 4 || city.SettlementSize != "city" {
		t.Fatalf("developed units must keep authored settlement values")
	}
}
