package memory

import (
	"context"

	"dominion/internal/app/ports"
)

type TurnClockRepo struct {
	store *Store
}

func NewTurnClockRepo(store *Store) TurnClockRepo {
	return TurnClockRepo{store: store}
}

// Get returns the zero clock before the first global advance.
func (r TurnClockRepo) Get(ctx context.Context) (ports.TurnClock, error) {
	defer r.store.lock(ctx)()
	return r.store.clock, nil
}

func (r TurnClockRepo) SaveWithVersion(ctx context.Context, clock ports.TurnClock, expectedVersion int64) error {
	defer r.store.lock(ctx)()
	if r.store.clock.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.clock = clock
	return nil
}
