package turn

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"dominion/internal/app/pending"
	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"

	"golang.org/x/sync/errgroup"
)

type unitResult int

const (
	resultSkipped unitResult = iota
	resultChanged
	resultFailed
)

type tally struct {
	mu      sync.Mutex
	results map[string]unitResult
	failed  []Failure
}

func newTally() *tally {
	return &tally{results: map[string]unitResult{}}
}

func (t *tally) record(kind, id string, changed, skipped bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case err != nil:
		t.results[id] = resultFailed
		t.failed = append(t.failed, Failure{Kind: kind, ID: id, Error: publicReason(err)})
	case changed && !skipped:
		t.results[id] = resultChanged
	default:
		t.results[id] = resultSkipped
	}
}

func (t *tally) counts() (changed, skipped int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.results {
		switch r {
		case resultChanged:
			changed++
		case resultSkipped:
			skipped++
		}
	}
	return changed, skipped
}

// subset reports results for the given unit ids only.
func (t *tally) subset(ids []string) (changed int, failed []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	failed = []string{}
	for _, id := range ids {
		switch t.results[id] {
		case resultChanged:
			changed++
		case resultFailed:
			failed = append(failed, id)
		}
	}
	sort.Strings(failed)
	return changed, failed
}

func publicReason(err error) string {
	switch {
	case errors.Is(err, ports.ErrConflict):
		return "concurrent update, retry the advance"
	case errors.Is(err, ports.ErrCorrupt):
		return "stored record is unreadable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "advance cancelled"
	default:
		return "temporary failure, try again"
	}
}

// corruptIDs splits a list error into the undecodable ids and a fatal error.
func corruptIDs(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}
	var corrupt *ports.CorruptRecordsError
	if errors.As(err, &corrupt) {
		return corrupt.IDs, nil
	}
	return nil, err
}

func (c *Cycle) advanceFaction(ctx context.Context, req Request) (Summary, error) {
	f, err := c.cfg.Factions.GetByID(ctx, req.FactionID)
	if err != nil {
		return Summary{}, err
	}
	if f.Archived {
		return Summary{}, campaign.ErrFactionArchived
	}
	target := req.TargetTurn
	if target == 0 {
		target = f.Turn + 1
	}
	territories, err := c.cfg.Territories.ListByOwner(ctx, f.ID)
	badUnits, err := corruptIDs(err)
	if err != nil {
		return Summary{}, err
	}
	snap := Snapshot{Turn: target, Factions: map[string]campaign.Faction{f.ID: f}, Territories: territories}
	owned := map[string][]string{f.ID: append(unitIDs(territories), badUnits...)}
	return c.sweep(ctx, ScopeFaction, snap, owned, badUnits, nil), nil
}

func (c *Cycle) advanceGlobal(ctx context.Context, req Request) (Summary, error) {
	clock, err := c.cfg.Clock.Get(ctx)
	if err != nil {
		return Summary{}, err
	}
	factions, err := c.cfg.Factions.List(ctx)
	badFactions, err := corruptIDs(err)
	if err != nil {
		return Summary{}, err
	}
	territories, err := c.cfg.Territories.List(ctx)
	badUnits, err := corruptIDs(err)
	if err != nil {
		return Summary{}, err
	}

	target := globalTarget(req, clock, factions)
	snap := Snapshot{Turn: target, Factions: make(map[string]campaign.Faction, len(factions)), Territories: territories}
	owned := map[string][]string{}
	for _, f := range factions {
		snap.Factions[f.ID] = f
	}
	for _, t := range territories {
		if t.Owned() {
			owned[t.OwnerID] = append(owned[t.OwnerID], t.ID)
		}
	}

	summary := c.sweep(ctx, ScopeGlobal, snap, owned, badUnits, badFactions)
	if target <= clock.Turn {
		return summary, nil
	}
	// A failed sweep keeps its target open so the retry lands on the same turn.
	next := ports.TurnClock{Turn: clock.Turn, Target: target, Version: clock.Version + 1, UpdatedAt: c.cfg.Now().UTC()}
	if len(summary.Failed) == 0 {
		next.Turn, next.Target = target, 0
	}
	err = c.cfg.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		return c.cfg.Clock.SaveWithVersion(txCtx, next, clock.Version)
	})
	if err != nil {
		c.logger.Warn().Err(err).Int("turn", target).Msg("turn clock not saved")
		summary.Failed = append(summary.Failed, Failure{Kind: "clock", ID: "global", Error: publicReason(err)})
	}
	return summary, nil
}

// globalTarget resumes an open sweep, otherwise moves past the clock and
// every faction that advanced on its own, so no active faction is skipped.
func globalTarget(req Request, clock ports.TurnClock, factions []campaign.Faction) int {
	if req.TargetTurn != 0 {
		return req.TargetTurn
	}
	if clock.Target > clock.Turn {
		return clock.Target
	}
	lead := clock.Turn
	for _, f := range factions {
		if !f.Archived && f.Turn > lead {
			lead = f.Turn
		}
	}
	return lead + 1
}

func unitIDs(territories []campaign.Territory) []string {
	out := make([]string, 0, len(territories))
	for _, t := range territories {
		out = append(out, t.ID)
	}
	return out
}

// sweep drains every territory in the snapshot concurrently, then every
// faction. Factions go last so each can carry the consolidated log entry for
// the units it owns.
func (c *Cycle) sweep(ctx context.Context, scope Scope, snap Snapshot, owned map[string][]string, badUnits, badFactions []string) Summary {
	extra := collect(c.cfg.Producers, snap)
	units := newTally()
	for _, id := range badUnits {
		c.logger.Warn().Str("territory_id", id).Int("turn", snap.Turn).Msg("territory record unreadable")
		units.record("territory", id, false, false, ports.ErrCorrupt)
	}

	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for _, t := range snap.Territories {
		id := t.ID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				units.record("territory", id, false, false, err)
				return nil
			}
			changed, skipped, err := c.processTerritory(ctx, id, snap.Turn, extra[pending.TerritoryTarget(id)])
			if err != nil {
				c.logger.Warn().Err(err).Str("territory_id", id).Int("turn", snap.Turn).Msg("territory turn failed")
			}
			units.record("territory", id, changed, skipped, err)
			return nil
		})
	}
	_ = g.Wait()

	factionIDs := make([]string, 0, len(snap.Factions))
	for id := range snap.Factions {
		factionIDs = append(factionIDs, id)
	}
	sort.Strings(factionIDs)

	factions := newTally()
	for _, id := range badFactions {
		c.logger.Warn().Str("faction_id", id).Int("turn", snap.Turn).Msg("faction record unreadable")
		factions.record("faction", id, false, false, ports.ErrCorrupt)
	}
	var (
		entriesMu sync.Mutex
		entries   []campaign.LogEntry
	)
	var fg errgroup.Group
	fg.SetLimit(c.cfg.Workers)
	for _, id := range factionIDs {
		id := id
		fg.Go(func() error {
			if err := ctx.Err(); err != nil {
				factions.record("faction", id, false, false, err)
				return nil
			}
			unitsChanged, unitsFailed := units.subset(owned[id])
			changed, skipped, entry, err := c.processFaction(ctx, scope, id, snap.Turn, extra[pending.FactionTarget(id)], unitsChanged, unitsFailed)
			if err != nil {
				c.logger.Warn().Err(err).Str("faction_id", id).Int("turn", snap.Turn).Msg("faction turn failed")
			}
			factions.record("faction", id, changed, skipped, err)
			if entry != nil {
				entriesMu.Lock()
				entries = append(entries, *entry)
				entriesMu.Unlock()
			}
			return nil
		})
	}
	_ = fg.Wait()

	failed := append(units.failed, factions.failed...)
	sort.Slice(failed, func(i, j int) bool {
		if failed[i].Kind != failed[j].Kind {
			return failed[i].Kind < failed[j].Kind
		}
		return failed[i].ID < failed[j].ID
	})
	if failed == nil {
		failed = []Failure{}
	}
	unitsChanged, unitsSkipped := units.counts()
	factionsChanged, factionsSkipped := factions.counts()
	return Summary{
		Scope:   scope,
		Turn:    snap.Turn,
		Changed: unitsChanged + factionsChanged,
		Skipped: unitsSkipped + factionsSkipped,
		Failed:  failed,
		Entries: entries,
	}
}

// processTerritory drains one unit. A unit already stamped at the target is
// skipped only when nothing is queued on it; a queued buffer is always
// drained so a unit whose counter runs ahead of its owner is never stranded.
// Producer effects apply once per stamp.
func (c *Cycle) processTerritory(ctx context.Context, id string, target int, extra campaign.PendingEffects) (changed, skipped bool, err error) {
	err = c.cfg.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := c.cfg.Territories.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		stamped := t.Turn >= target
		fold := t.FoldLegacy()
		if fold.Malformed {
			c.logger.Warn().Str("territory_id", t.ID).Str("payload", string(fold.Dropped)).Msg("dropped malformed legacy pending payload")
		}
		if stamped && !fold.Changed && t.Pending == nil {
			skipped = true
			return nil
		}

		dropped := t.DiscardIfScorched()
		if dropped != nil {
			c.logger.Warn().Str("territory_id", t.ID).Interface("discarded", dropped).Msg("discarded effects queued on scorched territory")
		}
		turn := t.Turn
		if !stamped {
			campaign.MergeInto(&t.Pending, extra)
			turn = target
		}
		changed = fold.Changed || dropped != nil || t.Pending != nil || t.ThisTurn.Any()

		app := t.DrainPending(turn)
		if app.Ignored != nil {
			c.logger.Warn().Str("territory_id", t.ID).Interface("ignored", app.Ignored).Msg("territory buffer carried faction fields")
		}
		expected := t.Version
		t.Version++
		t.UpdatedAt = c.cfg.Now().UTC()
		if err := c.cfg.Territories.SaveWithVersion(txCtx, t, expected); err != nil {
			return fmt.Errorf("save territory %s: %w", t.ID, err)
		}
		c.logger.Debug().Str("territory_id", t.ID).Int("turn", turn).Bool("changed", changed).Msg("territory advanced")
		return nil
	})
	if err != nil {
		return false, false, err
	}
	return changed, skipped, nil
}

func (c *Cycle) processFaction(ctx context.Context, scope Scope, id string, target int, extra campaign.PendingEffects, unitsChanged int, unitsFailed []string) (changed, skipped bool, entry *campaign.LogEntry, err error) {
	err = c.cfg.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		f, err := c.cfg.Factions.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if f.Archived || f.Turn >= target {
			skipped = true
			return nil
		}
		now := c.cfg.Now().UTC()

		fold := f.FoldLegacy()
		if fold.Malformed {
			c.logger.Warn().Str("faction_id", f.ID).Str("payload", string(fold.Dropped)).Msg("dropped malformed legacy pending payload")
			f.AppendLog(campaign.NewLogEntry(campaign.LogLegacyDropped, now, "dropped malformed legacy pending payload", map[string]any{
				"payload": string(fold.Dropped),
			}))
		}
		campaign.MergeInto(&f.Pending, extra)
		changed = fold.Changed || f.Pending != nil || f.ThisTurn.Any()

		app := f.DrainPending(target)
		if app.Ignored != nil {
			c.logger.Warn().Str("faction_id", f.ID).Interface("ignored", app.Ignored).Msg("faction buffer carried territory fields")
		}
		if len(app.Clamped) > 0 {
			c.logger.Debug().Str("faction_id", f.ID).Interface("clamped", app.Clamped).Msg("turn delta clamped at zero")
		}

		total := unitsChanged
		if changed {
			total++
		}
		payload := map[string]any{
			"scope":   scope,
			"turn":    target,
			"changed": total,
			"failed":  unitsFailed,
			"applied": app.Applied,
		}
		if len(app.Clamped) > 0 {
			payload["clamped"] = app.Clamped
		}
		e := campaign.NewLogEntry(campaign.LogTurnAdvanced, now,
			fmt.Sprintf("turn %d: %d entities changed, %d failed", target, total, len(unitsFailed)), payload)
		e.FactionID = f.ID
		f.AppendLog(e)

		expected := f.Version
		f.Version++
		f.UpdatedAt = now
		if err := c.cfg.Factions.SaveWithVersion(txCtx, f, expected); err != nil {
			return fmt.Errorf("save faction %s: %w", f.ID, err)
		}
		entry = &e
		c.logger.Debug().Str("faction_id", f.ID).Int("turn", target).Bool("changed", changed).Msg("faction advanced")
		return nil
	})
	if err != nil {
		return false, false, nil, err
	}
	return changed, skipped, entry, nil
}
