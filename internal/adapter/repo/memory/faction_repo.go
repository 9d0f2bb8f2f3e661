package memory

import (
	"context"
	"sort"

	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"
)

type FactionRepo struct {
	store *Store
}

func NewFactionRepo(store *Store) FactionRepo {
	return FactionRepo{store: store}
}

func (r FactionRepo) GetByID(ctx context.Context, factionID string) (campaign.Faction, error) {
	defer r.store.lock(ctx)()
	f, ok := r.store.factions[factionID]
	if !ok {
		return campaign.Faction{}, ports.ErrNotFound
	}
	return cloneFaction(f), nil
}

func (r FactionRepo) List(ctx context.Context) ([]campaign.Faction, error) {
	defer r.store.lock(ctx)()
	out := make([]campaign.Faction, 0, len(r.store.factions))
	for _, f := range r.store.factions {
		out = append(out, cloneFaction(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r FactionRepo) SaveWithVersion(ctx context.Context, faction campaign.Faction, expectedVersion int64) error {
	defer r.store.lock(ctx)()
	current, ok := r.store.factions[faction.ID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.factions[faction.ID] = cloneFaction(faction)
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.factions[faction.ID] = cloneFaction(faction)
	return nil
}
