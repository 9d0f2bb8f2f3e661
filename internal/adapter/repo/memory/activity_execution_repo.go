package memory

import (
	"context"
	"encoding/json"

	"dominion/internal/app/ports"
)

type ActivityExecutionRepo struct {
	store *Store
}

func NewActivityExecutionRepo(store *Store) ActivityExecutionRepo {
	return ActivityExecutionRepo{store: store}
}

func (r ActivityExecutionRepo) GetByIdempotencyKey(ctx context.Context, factionID, key string) (*ports.ActivityExecutionRecord, error) {
	defer r.store.lock(ctx)()
	rec, ok := r.store.execution[execKey(factionID, key)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := rec
	copy.Response = append(json.RawMessage(nil), rec.Response...)
	return &copy, nil
}

func (r ActivityExecutionRepo) SaveExecution(ctx context.Context, execution ports.ActivityExecutionRecord) error {
	defer r.store.lock(ctx)()
	k := execKey(execution.FactionID, execution.IdempotencyKey)
	if _, exists := r.store.execution[k]; exists {
		return ports.ErrConflict
	}
	execution.Response = append(json.RawMessage(nil), execution.Response...)
	r.store.execution[k] = execution
	return nil
}
