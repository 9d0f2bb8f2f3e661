package activity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"
)

type Spec struct {
	Key   string
	Label string
	// Cost is the fixed price; handlers may replace it at plan time.
	Cost            campaign.LedgerDelta
	TargetTerritory bool
	Handler         Handler
}

type Handler interface {
	Precheck(ctx context.Context, uc UseCase, ac *ActivityContext) error
	Plan(ctx context.Context, uc UseCase, ac *ActivityContext) error
}

type BaseHandler struct{}

func (BaseHandler) Precheck(context.Context, UseCase, *ActivityContext) error { return nil }
func (BaseHandler) Plan(context.Context, UseCase, *ActivityContext) error     { return nil }

type ActivityInput struct {
	Req    Request
	Params Params
}

type ActivityView struct {
	Spec      Spec
	Faction   campaign.Faction
	Territory *campaign.Territory
}

type ActivityPlan struct {
	Cost        campaign.LedgerDelta
	Effects     []QueuedEffect
	Description string
	Payment     *campaign.LogEntry
}

type ActivityContext struct {
	In   ActivityInput
	View ActivityView
	Plan ActivityPlan
}

// Catalog is populated at startup and frozen before the first turn; after
// Freeze it is read-only.
type Catalog struct {
	mu     sync.RWMutex
	specs  map[string]Spec
	frozen bool
}

func NewCatalog() *Catalog {
	return &Catalog{specs: map[string]Spec{}}
}

func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, spec := range builtinSpecs() {
		if err := c.Register(spec); err != nil {
			panic(err)
		}
	}
	return c
}

func (c *Catalog) Register(spec Spec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return ErrCatalogFrozen
	}
	if spec.Key == "" || spec.Handler == nil {
		return fmt.Errorf("%w: key and handler are required", ErrInvalidRequest)
	}
	if _, exists := c.specs[spec.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateActivity, spec.Key)
	}
	c.specs[spec.Key] = spec
	return nil
}

// ApplyTuning overrides labels and costs and removes disabled activities.
func (c *Catalog) ApplyTuning(t ports.Tuning) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return ErrCatalogFrozen
	}
	for key, o := range t.Activities {
		spec, ok := c.specs[key]
		if !ok {
			return fmt.Errorf("%w: tuning for %s", ErrActivityNotFound, key)
		}
		if o.Disabled {
			delete(c.specs, key)
			continue
		}
		if o.Label != "" {
			spec.Label = o.Label
		}
		if o.Cost != nil {
			cost, err := campaign.DeltaFromMap(o.Cost)
			if err != nil {
				return fmt.Errorf("tuning for %s: %w", key, err)
			}
			for _, v := range cost {
				if v < 0 {
					return fmt.Errorf("tuning for %s: %w: negative cost", key, ErrInvalidParams)
				}
			}
			spec.Cost = cost
		}
		c.specs[key] = spec
	}
	return nil
}

func (c *Catalog) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

func (c *Catalog) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

func (c *Catalog) Lookup(key string) (Spec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	spec, ok := c.specs[key]
	return spec, ok
}

func (c *Catalog) Entries() []CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CatalogEntry, 0, len(c.specs))
	for _, spec := range c.specs {
		out = append(out, CatalogEntry{Key: spec.Key, Label: spec.Label, Cost: spec.Cost, TargetTerritory: spec.TargetTerritory})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
