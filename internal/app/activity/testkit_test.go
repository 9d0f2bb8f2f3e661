package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"dominion/internal/adapter/repo/memory"
	"dominion/internal/app/ledger"
	"dominion/internal/app/pending"
	"dominion/internal/domain/campaign"
)

type stubMetrics struct {
	mu       sync.Mutex
	success  map[string]int
	rejected map[string]int
	conflict int
	failure  int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{success: map[string]int{}, rejected: map[string]int{}}
}

func (m *stubMetrics) RecordActivity(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.success[key]++
}

func (m *stubMetrics) RecordRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func (m *stubMetrics) RecordConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflict++
}

func (m *stubMetrics) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure++
}

type stubNotifier struct {
	entries []campaign.LogEntry
}

func (n *stubNotifier) Publish(_ context.Context, entries []campaign.LogEntry) {
	n.entries = append(n.entries, entries...)
}

type harness struct {
	uc       UseCase
	store    *memory.Store
	metrics  *stubMetrics
	notifier *stubNotifier
}

func newHarness(t *testing.T) harness {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	factions := memory.NewFactionRepo(store)
	territories := memory.NewTerritoryRepo(store)
	now := func() time.Time { return time.Unix(1700000000, 0) }
	catalog := DefaultCatalog()
	catalog.Freeze()
	metrics := newStubMetrics()
	notifier := &stubNotifier{}
	return harness{
		uc: UseCase{
			TxManager:    tx,
			Factions:     factions,
			Territories:  territories,
			ActivityRepo: memory.NewActivityExecutionRepo(store),
			Ledger:       ledger.UseCase{TxManager: tx, Factions: factions, Now: now},
			Pending:      pending.Service{TxManager: tx, Factions: factions, Territories: territories, Now: now},
			Catalog:      catalog,
			Metrics:      metrics,
			Notifier:     notifier,
			Now:          now,
		},
		store:    store,
		metrics:  metrics,
		notifier: notifier,
	}
}

func (h harness) seedFaction(id string, ledger campaign.Ledger) {
	f := campaign.NewFaction(id, id)
	f.Ledger = ledger
	h.store.SeedFaction(f)
}

func (h harness) seedOwnedTerritory(id, owner string) {
	t := campaign.NewTerritory(id, false)
	t.OwnerID = owner
	t.Status = campaign.StatusOccupied
	h.store.SeedTerritory(t)
}

func (h harness) faction(t *testing.T, id string) campaign.Faction {
	t.Helper()
	f, err := memory.NewFactionRepo(h.store).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load faction %s: %v", id, err)
	}
	return f
}

func (h harness) territory(t *testing.T, id string) campaign.Territory {
	t.Helper()
	tr, err := memory.NewTerritoryRepo(h.store).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load territory %s: %v", id, err)
	}
	return tr
}
