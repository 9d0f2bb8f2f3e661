package pending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidTarget       = errors.New("invalid pending target")
	ErrIncompatibleEffects = errors.New("effects cannot be carried by target")
)

type TargetKind string

const (
	TargetFaction   TargetKind = "faction"
	TargetTerritory TargetKind = "territory"
)

type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func FactionTarget(id string) Target   { return Target{Kind: TargetFaction, ID: id} }
func TerritoryTarget(id string) Target { return Target{Kind: TargetTerritory, ID: id} }

// Service owns every write to pending buffers outside the turn sweep.
type Service struct {
	TxManager   ports.TxManager
	Factions    ports.FactionRepository
	Territories ports.TerritoryRepository
	Logger      zerolog.Logger
	Now         func() time.Time
}

func (s Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Queue folds any legacy payload on the target and merges effects into its
// canonical buffer with one versioned write.
func (s Service) Queue(ctx context.Context, target Target, effects campaign.PendingEffects) error {
	if target.ID == "" {
		return ErrInvalidTarget
	}
	return s.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		switch target.Kind {
		case TargetFaction:
			if effects.HasTerritoryOnlyFields() {
				return fmt.Errorf("%w: territory modifiers on faction %s", ErrIncompatibleEffects, target.ID)
			}
			f, err := s.Factions.GetByID(txCtx, target.ID)
			if err != nil {
				return err
			}
			s.foldFaction(&f)
			campaign.MergeInto(&f.Pending, effects)
			return s.saveFaction(txCtx, f)
		case TargetTerritory:
			if effects.HasFactionOnlyFields() {
				return fmt.Errorf("%w: faction fields on territory %s", ErrIncompatibleEffects, target.ID)
			}
			t, err := s.Territories.GetByID(txCtx, target.ID)
			if err != nil {
				return err
			}
			s.foldTerritory(&t)
			campaign.MergeInto(&t.Pending, effects)
			return s.saveTerritory(txCtx, t)
		default:
			return ErrInvalidTarget
		}
	})
}

// FoldFaction returns the faction with its legacy slot folded. It writes
// only when the fold changed something.
func (s Service) FoldFaction(ctx context.Context, factionID string) (campaign.Faction, error) {
	var out campaign.Faction
	err := s.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		f, err := s.Factions.GetByID(txCtx, factionID)
		if err != nil {
			return err
		}
		if !s.foldFaction(&f) {
			out = f
			return nil
		}
		if err := s.saveFaction(txCtx, f); err != nil {
			return err
		}
		out, err = s.Factions.GetByID(txCtx, factionID)
		return err
	})
	return out, err
}

func (s Service) FoldTerritory(ctx context.Context, territoryID string) (campaign.Territory, error) {
	var out campaign.Territory
	err := s.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.Territories.GetByID(txCtx, territoryID)
		if err != nil {
			return err
		}
		if !s.foldTerritory(&t) {
			out = t
			return nil
		}
		if err := s.saveTerritory(txCtx, t); err != nil {
			return err
		}
		out, err = s.Territories.GetByID(txCtx, territoryID)
		return err
	})
	return out, err
}

func (s Service) foldFaction(f *campaign.Faction) bool {
	res := f.FoldLegacy()
	if res.Malformed {
		s.Logger.Warn().Str("faction_id", f.ID).Str("payload", string(res.Dropped)).Msg("dropped malformed legacy pending payload")
		entry := campaign.NewLogEntry(campaign.LogLegacyDropped, s.now(), "dropped malformed legacy pending payload", map[string]any{
			"payload": string(res.Dropped),
		})
		f.AppendLog(entry)
	}
	return res.Changed
}

func (s Service) foldTerritory(t *campaign.Territory) bool {
	res := t.FoldLegacy()
	if res.Malformed {
		s.Logger.Warn().Str("territory_id", t.ID).Str("payload", string(res.Dropped)).Msg("dropped malformed legacy pending payload")
	}
	return res.Changed
}

func (s Service) saveFaction(ctx context.Context, f campaign.Faction) error {
	expected := f.Version
	f.Version++
	f.UpdatedAt = s.now()
	if err := s.Factions.SaveWithVersion(ctx, f, expected); err != nil {
		return fmt.Errorf("save faction %s: %w", f.ID, err)
	}
	return nil
}

func (s Service) saveTerritory(ctx context.Context, t campaign.Territory) error {
	expected := t.Version
	t.Version++
	t.UpdatedAt = s.now()
	if err := s.Territories.SaveWithVersion(ctx, t, expected); err != nil {
		return fmt.Errorf("save territory %s: %w", t.ID, err)
	}
	return nil
}
