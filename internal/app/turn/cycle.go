package turn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dominion/internal/app/activity"
	"dominion/internal/app/ports"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidRequest    = errors.New("invalid turn request")
	ErrAdvanceInProgress = errors.New("turn advance already in progress")
	ErrReentrantAdvance  = errors.New("turn advance invoked from inside a sweep")
	ErrCatalogNotFrozen  = errors.New("activity catalog must be frozen before turns run")
)

const globalGuardKey = "*"

type Config struct {
	TxManager   ports.TxManager
	Factions    ports.FactionRepository
	Territories ports.TerritoryRepository
	Clock       ports.TurnClockRepository
	Catalog     *activity.Catalog
	Producers   []Producer
	Notifier    ports.Notifier
	Metrics     ports.TurnMetrics
	Logger      zerolog.Logger
	Workers     int
	Now         func() time.Time
}

type Cycle struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewCycle wires the orchestrator. The catalog must already be frozen so no
// registration can race with a sweep.
func NewCycle(cfg Config) (*Cycle, error) {
	if cfg.TxManager == nil || cfg.Factions == nil || cfg.Territories == nil || cfg.Clock == nil {
		return nil, fmt.Errorf("%w: repositories and tx manager are required", ErrInvalidRequest)
	}
	if cfg.Catalog == nil || !cfg.Catalog.Frozen() {
		return nil, ErrCatalogNotFrozen
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Producers == nil {
		cfg.Producers = DefaultProducers()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = ports.NopNotifier{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Cycle{
		cfg:      cfg,
		logger:   cfg.Logger.With().Str("component", "turn_cycle").Logger(),
		inflight: map[string]struct{}{},
	}, nil
}

type sweepKey struct{}

func inSweep(ctx context.Context) bool {
	_, ok := ctx.Value(sweepKey{}).(struct{})
	return ok
}

func (c *Cycle) acquire(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[globalGuardKey]; busy {
		return ErrAdvanceInProgress
	}
	if key == globalGuardKey && len(c.inflight) > 0 {
		return ErrAdvanceInProgress
	}
	if _, busy := c.inflight[key]; busy {
		return ErrAdvanceInProgress
	}
	c.inflight[key] = struct{}{}
	return nil
}

func (c *Cycle) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// Advance runs one turn for the requested scope. Entity failures are
// reported in the summary, not as an error; the error return is reserved
// for requests that could not start a sweep at all.
func (c *Cycle) Advance(ctx context.Context, req Request) (Summary, error) {
	if inSweep(ctx) {
		return Summary{}, ErrReentrantAdvance
	}
	req = req.Normalize()

	var key string
	switch req.Scope {
	case ScopeFaction:
		if req.FactionID == "" {
			return Summary{}, ErrInvalidRequest
		}
		key = "faction:" + req.FactionID
	case ScopeGlobal:
		key = globalGuardKey
	default:
		return Summary{}, ErrInvalidRequest
	}
	if err := c.acquire(key); err != nil {
		return Summary{}, err
	}
	defer c.release(key)

	ctx = context.WithValue(ctx, sweepKey{}, struct{}{})
	start := time.Now()

	var (
		summary Summary
		err     error
	)
	if req.Scope == ScopeFaction {
		summary, err = c.advanceFaction(ctx, req)
	} else {
		summary, err = c.advanceGlobal(ctx, req)
	}
	if err != nil {
		return Summary{}, err
	}

	if c.cfg.Metrics != nil {
		c.cfg.Metrics.RecordTurn(summary.Changed, summary.Skipped, len(summary.Failed))
	}
	c.logger.Info().
		Str("scope", string(summary.Scope)).
		Str("faction_id", req.FactionID).
		Int("turn", summary.Turn).
		Int("changed", summary.Changed).
		Int("skipped", summary.Skipped).
		Int("failed", len(summary.Failed)).
		Dur("took", time.Since(start)).
		Msg("turn advanced")
	if len(summary.Entries) > 0 {
		c.cfg.Notifier.Publish(ctx, summary.Entries)
	}
	return summary, nil
}
