package outcome

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"

	"github.com/rs/zerolog"
)

var ErrInvalidRequest = errors.New("invalid outcome request")

type Request struct {
	FactionID   string              `json:"faction_id"`
	TerritoryID string              `json:"territory_id"`
	Outcome     campaign.OutcomeKey `json:"outcome"`
	Tier        campaign.Tier       `json:"tier"`
	// Context is free-form upstream detail (raid id, dice) copied into the audit entry.
	Context map[string]any `json:"context,omitempty"`
}

type Response struct {
	Entry       campaign.LogEntry           `json:"entry"`
	Application campaign.OutcomeApplication `json:"application"`
}

type Resolver struct {
	TxManager   ports.TxManager
	Factions    ports.FactionRepository
	Territories ports.TerritoryRepository
	Table       campaign.OutcomeTable
	Notifier    ports.Notifier
	Logger      zerolog.Logger
	Now         func() time.Time
}

// NewResolver validates table before accepting it.
func NewResolver(r Resolver) (Resolver, error) {
	if r.Table == nil {
		r.Table = campaign.DefaultOutcomeTable()
	}
	if err := r.Table.Validate(); err != nil {
		return Resolver{}, err
	}
	return r, nil
}

func (r Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

// Apply checks every precondition against committed state, then writes the
// territory and the faction (with its audit entry) in one transaction.
func (r Resolver) Apply(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.FactionID) == "" || strings.TrimSpace(req.TerritoryID) == "" || req.Outcome == "" {
		return Response{}, ErrInvalidRequest
	}
	now := r.now()

	var out Response
	err := r.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		faction, err := r.Factions.GetByID(txCtx, req.FactionID)
		if err != nil {
			return err
		}
		if faction.Archived {
			return campaign.ErrFactionArchived
		}
		territory, err := r.Territories.GetByID(txCtx, req.TerritoryID)
		if err != nil {
			return err
		}

		dreq := campaign.OutcomeRequest{FactionID: faction.ID, Outcome: req.Outcome, Tier: req.Tier, At: now}
		rule, eff, err := r.Table.CheckOutcome(dreq, territory)
		if err != nil {
			return err
		}
		nextFaction, nextTerritory, app := campaign.ResolveOutcome(dreq, eff, faction, territory)

		payload := map[string]any{
			"outcome":     req.Outcome,
			"tier":        req.Tier,
			"application": app,
		}
		if len(req.Context) > 0 {
			payload["context"] = req.Context
		}
		entry := campaign.NewLogEntry(campaign.LogOutcome, now,
			fmt.Sprintf("%s applied %s (tier %d) to %s", faction.Name, rule.Label, req.Tier, territory.ID), payload)
		entry.FactionID = faction.ID
		entry.TerritoryID = territory.ID

		expectedT := territory.Version
		nextTerritory.Version = territory.Version + 1
		nextTerritory.UpdatedAt = now
		if err := r.Territories.SaveWithVersion(txCtx, nextTerritory, expectedT); err != nil {
			return fmt.Errorf("save territory %s: %w", territory.ID, err)
		}

		expectedF := faction.Version
		nextFaction.AppendLog(entry)
		nextFaction.Version = faction.Version + 1
		nextFaction.UpdatedAt = now
		if err := r.Factions.SaveWithVersion(txCtx, nextFaction, expectedF); err != nil {
			return fmt.Errorf("save faction %s: %w", faction.ID, err)
		}

		out = Response{Entry: entry, Application: app}
		return nil
	})
	if err != nil {
		return Response{}, err
	}
	r.Logger.Info().
		Str("faction_id", req.FactionID).
		Str("territory_id", req.TerritoryID).
		Str("outcome", string(req.Outcome)).
		Int("tier", int(req.Tier)).
		Int("progress", out.Application.ProgressAfter).
		Msg("outcome applied")
	if r.Notifier != nil {
		r.Notifier.Publish(ctx, []campaign.LogEntry{out.Entry})
	}
	return out, nil
}

type RuleView struct {
	Key               campaign.OutcomeKey `json:"key"`
	Label             string              `json:"label"`
	AllowedTiers      []campaign.Tier     `json:"allowed_tiers"`
	RequiresOwnership bool                `json:"requires_ownership"`
}

func (r Resolver) Rules() []RuleView {
	keys := []campaign.OutcomeKey{
		campaign.OutcomeJustice,
		campaign.OutcomeLiberation,
		campaign.OutcomeIntegration,
		campaign.OutcomeRetribution,
		campaign.OutcomeSaltTheEarth,
	}
	out := make([]RuleView, 0, len(r.Table))
	for _, k := range keys {
		rule, ok := r.Table[k]
		if !ok {
			continue
		}
		out = append(out, RuleView{Key: rule.Key, Label: rule.Label, AllowedTiers: rule.AllowedTiers, RequiresOwnership: rule.RequiresOwnership})
	}
	return out
}
