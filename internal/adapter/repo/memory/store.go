package memory

import (
	"context"
	"encoding/json"
	"sync"

	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"
)

type Store struct {
	mu          sync.Mutex
	factions    map[string]campaign.Faction
	territories map[string]campaign.Territory
	execution   map[string]ports.ActivityExecutionRecord
	clock       ports.TurnClock
}

func NewStore() *Store {
	return &Store{
		factions:    make(map[string]campaign.Faction),
		territories: make(map[string]campaign.Territory),
		execution:   make(map[string]ports.ActivityExecutionRecord),
	}
}

func execKey(factionID, key string) string {
	return factionID + "::" + key
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock takes the store mutex unless ctx already runs inside RunInTx, which
// holds it for the whole transaction.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type storeSnapshot struct {
	factions    map[string]campaign.Faction
	territories map[string]campaign.Territory
	execution   map[string]ports.ActivityExecutionRecord
	clock       ports.TurnClock
}

// snapshot copies the maps; records are cloned on every read and write so the
// values can be shared.
func (s *Store) snapshot() storeSnapshot {
	out := storeSnapshot{
		factions:    make(map[string]campaign.Faction, len(s.factions)),
		territories: make(map[string]campaign.Territory, len(s.territories)),
		execution:   make(map[string]ports.ActivityExecutionRecord, len(s.execution)),
		clock:       s.clock,
	}
	for k, v := range s.factions {
		out.factions[k] = v
	}
	for k, v := range s.territories {
		out.territories[k] = v
	}
	for k, v := range s.execution {
		out.execution[k] = v
	}
	return out
}

func (s *Store) restore(snap storeSnapshot) {
	s.factions = snap.factions
	s.territories = snap.territories
	s.execution = snap.execution
	s.clock = snap.clock
}

func (s *Store) SeedFaction(f campaign.Faction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Version == 0 {
		f.Version = 1
	}
	s.factions[f.ID] = cloneFaction(f)
}

func (s *Store) SeedTerritory(t campaign.Territory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Version == 0 {
		t.Version = 1
	}
	s.territories[t.ID] = cloneTerritory(t)
}

func cloneFaction(f campaign.Faction) campaign.Faction {
	f.Tags = append([]string{}, f.Tags...)
	f.Log = append([]campaign.LogEntry{}, f.Log...)
	f.Pending = clonePending(f.Pending)
	f.LegacyPending = cloneRaw(f.LegacyPending)
	return f
}

func cloneTerritory(t campaign.Territory) campaign.Territory {
	t.Tags = append([]string{}, t.Tags...)
	t.Integration.History = append([]campaign.IntegrationChange{}, t.Integration.History...)
	t.Pending = clonePending(t.Pending)
	t.LegacyPending = cloneRaw(t.LegacyPending)
	return t
}

func clonePending(p *campaign.PendingEffects) *campaign.PendingEffects {
	if p == nil {
		return nil
	}
	c := *p
	c.AddTags = append([]string(nil), p.AddTags...)
	c.RemoveTags = append([]string(nil), p.RemoveTags...)
	return &c
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
