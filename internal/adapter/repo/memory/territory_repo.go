package memory

import (
	"context"
	"sort"

	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"
)

type TerritoryRepo struct {
	store *Store
}

func NewTerritoryRepo(store *Store) TerritoryRepo {
	return TerritoryRepo{store: store}
}

func (r TerritoryRepo) GetByID(ctx context.Context, territoryID string) (campaign.Territory, error) {
	defer r.store.lock(ctx)()
	t, ok := r.store.territories[territoryID]
	if !ok {
		return campaign.Territory{}, ports.ErrNotFound
	}
	return cloneTerritory(t), nil
}

func (r TerritoryRepo) List(ctx context.Context) ([]campaign.Territory, error) {
	defer r.store.lock(ctx)()
	return r.filter(func(campaign.Territory) bool { return true }), nil
}

func (r TerritoryRepo) ListByOwner(ctx context.Context, factionID string) ([]campaign.Territory, error) {
	defer r.store.lock(ctx)()
	return r.filter(func(t campaign.Territory) bool { return t.OwnerID == factionID }), nil
}

func (r TerritoryRepo) filter(keep func(campaign.Territory) bool) []campaign.Territory {
	out := make([]campaign.Territory, 0, len(r.store.territories))
	for _, t := range r.store.territories {
		if keep(t) {
			out = append(out, cloneTerritory(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r TerritoryRepo) SaveWithVersion(ctx context.Context, territory campaign.Territory, expectedVersion int64) error {
	defer r.store.lock(ctx)()
	current, ok := r.store.territories[territory.ID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.territories[territory.ID] = cloneTerritory(territory)
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.territories[territory.ID] = cloneTerritory(territory)
	return nil
}
