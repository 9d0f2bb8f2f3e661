package turn

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dominion/internal/adapter/repo/memory"
	"dominion/internal/app/activity"
	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"
)

var errDiskFull = errors.New("disk full")

// flakyTerritories fails writes for the listed ids until healed.
type flakyTerritories struct {
	ports.TerritoryRepository
	mu      sync.Mutex
	failing map[string]bool
}

func (r *flakyTerritories) SaveWithVersion(ctx context.Context, t campaign.Territory, expected int64) error {
	r.mu.Lock()
	fail := r.failing[t.ID]
	r.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return r.TerritoryRepository.SaveWithVersion(ctx, t, expected)
}

func (r *flakyTerritories) heal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = map[string]bool{}
}

type stubTurnMetrics struct {
	changed, skipped, failed int
	calls                    int
}

func (m *stubTurnMetrics) RecordTurn(changed, skipped, failed int) {
	m.calls++
	m.changed, m.skipped, m.failed = changed, skipped, failed
}

type env struct {
	store   *memory.Store
	cfg     Config
	metrics *stubTurnMetrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	catalog := activity.DefaultCatalog()
	catalog.Freeze()
	metrics := &stubTurnMetrics{}
	return &env{
		store:   store,
		metrics: metrics,
		cfg: Config{
			TxManager:   memory.NewTxManager(store),
			Factions:    memory.NewFactionRepo(store),
			Territories: memory.NewTerritoryRepo(store),
			Clock:       memory.NewTurnClockRepo(store),
			Catalog:     catalog,
			Metrics:     metrics,
			Workers:     3,
			Now:         func() time.Time { return time.Unix(1700000000, 0) },
		},
	}
}

func (e *env) cycle(t *testing.T) *Cycle {
	t.Helper()
	c, err := NewCycle(e.cfg)
	if err != nil {
		t.Fatalf("new cycle: %v", err)
	}
	return c
}

func (e *env) faction(t *testing.T, id string) campaign.Faction {
	t.Helper()
	f, err := memory.NewFactionRepo(e.store).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("faction %s: %v", id, err)
	}
	return f
}

func (e *env) territory(t *testing.T, id string) campaign.Territory {
	t.Helper()
	tr, err := memory.NewTerritoryRepo(e.store).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("territory %s: %v", id, err)
	}
	return tr
}

func ownedTerritory(id, owner string) campaign.Territory {
	t := campaign.NewTerritory(id, false)
	t.OwnerID = owner
	t.Status = campaign.StatusOccupied
	return t
}
