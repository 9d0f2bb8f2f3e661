package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dominion/internal/adapter/repo/memory"
	"dominion/internal/app/activity"
	"dominion/internal/config"

	"github.com/rs/zerolog"
)

func memoryRepos() repos {
	store := memory.NewStore()
	return repos{
		tx:          memory.NewTxManager(store),
		factions:    memory.NewFactionRepo(store),
		territories: memory.NewTerritoryRepo(store),
		executions:  memory.NewActivityExecutionRepo(store),
		clock:       memory.NewTurnClockRepo(store),
	}
}

func TestBuildLogger_FallsBackToInfo(t *testing.T) {
	logger := buildLogger(config.Config{LogLevel: "chatty"})
	if got := logger.GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("level=%v want info", got)
	}
	logger = buildLogger(config.Config{LogLevel: "DEBUG"})
	if got := logger.GetLevel(); got != zerolog.DebugLevel {
		t.Fatalf("level=%v want debug", got)
	}
}

func TestTuningProvider_SplitsPath(t *testing.T) {
	p := tuningProvider("/etc/dominion/tuning.yaml")
	if p.Root != "/etc/dominion" || p.File != "tuning.yaml" {
		t.Fatalf("unexpected provider: %+v", p)
	}
	if p := tuningProvider(" "); p.File != "" {
		t.Fatalf("expected empty provider, got %+v", p)
	}
}

func TestBuildCatalog_AppliesTuningAndFreezes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("activities:\n  sabotage:\n    disabled: true\n"), 0o644); err != nil {
		t.Fatalf("write tuning: %v", err)
	}

	catalog, err := buildCatalog(context.Background(), tuningProvider(path))
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	if !catalog.Frozen() {
		t.Fatalf("expected frozen catalog")
	}
	if _, ok := catalog.Lookup(activity.KeySabotage); ok {
		t.Fatalf("expected sabotage disabled")
	}
}

func TestSeedDemo_Idempotent(t *testing.T) {
	r := memoryRepos()
	ctx := context.Background()
	if err := seedDemo(ctx, r); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := seedDemo(ctx, r); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	factions, err := r.factions.List(ctx)
	if err != nil {
		t.Fatalf("list factions: %v", err)
	}
	if len(factions) != 2 {
		t.Fatalf("expected 2 factions, got %d", len(factions))
	}
	owned, err := r.territories.ListByOwner(ctx, "ashen-choir")
	if err != nil {
		t.Fatalf("list territories: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != "ember-vale" {
		t.Fatalf("unexpected owned territories: %+v", owned)
	}
}
