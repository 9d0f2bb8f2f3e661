package campaign

import (
	"errors"
	"fmt"
	"time"
)

type OutcomeKey string

const (
	OutcomeJustice      OutcomeKey = "justice"
	OutcomeLiberation   OutcomeKey = "liberation"
	OutcomeIntegration  OutcomeKey = "integration"
	OutcomeRetribution  OutcomeKey = "retribution"
	OutcomeSaltTheEarth OutcomeKey = "salt_the_earth"
)

// Tier is the eligibility tier produced upstream by the combat or raid layer.
type Tier int

const (
	TierMinor    Tier = 1
	TierStandard Tier = 2
	TierMajor    Tier = 3
)

var (
	ErrUnknownOutcome     = errors.New("unknown outcome")
	ErrNotOwner           = errors.New("territory not owned by faction")
	ErrTierNotAllowed     = errors.New("tier not allowed for outcome")
	ErrTerritoryScorched  = errors.New("territory is scorched")
	ErrResetOutsideSalt   = errors.New("integration reset is reserved for salt the earth")
	ErrOutcomeMissingTier = errors.New("outcome has no effect for allowed tier")
)

type TerritoryEffect struct {
	Status     TerritoryStatus `json:"status,omitempty"`
	ClaimOwner bool            `json:"claim_owner,omitempty"`
	AddTags    []string        `json:"add_tags,omitempty"`
	RemoveTags []string        `json:"remove_tags,omitempty"`
	Mods       Mods            `json:"mods"`
}

type OutcomeEffect struct {
	Territory   TerritoryEffect      `json:"territory"`
	Tracks      TrackDelta           `json:"tracks"`
	Victory     VictoryDelta         `json:"victory_bonus"`
	Integration IntegrationDirective `json:"integration"`
}

type OutcomeRule struct {
	Key               OutcomeKey             `json:"key"`
	Label             string                 `json:"label"`
	AllowedTiers      []Tier                 `json:"allowed_tiers"`
	RequiresOwnership bool                   `json:"requires_ownership"`
	Effects           map[Tier]OutcomeEffect `json:"effects"`
}

func (r OutcomeRule) Allows(t Tier) bool {
	for _, allowed := range r.AllowedTiers {
		if allowed == t {
			return true
		}
	}
	return false
}

type OutcomeTable map[OutcomeKey]OutcomeRule

// DefaultOutcomeTable is the hand-authored resolution matrix.
func DefaultOutcomeTable() OutcomeTable {
	all := []Tier{TierMinor, TierStandard, TierMajor}
	return OutcomeTable{
		OutcomeJustice: {
			Key:               OutcomeJustice,
			Label:             "Justice / Reformation",
			AllowedTiers:      all,
			RequiresOwnership: true,
			Effects: map[Tier]OutcomeEffect{
				TierMinor: {
					Territory:   TerritoryEffect{AddTags: []string{TagReformed}, RemoveTags: []string{TagLawless}, Mods: Mods{Morale: 1}},
					Tracks:      TrackDelta{Loyalty: 5},
					Victory:     VictoryDelta{Unity: 2},
					Integration: IntegrationDirective{Kind: IntegrationAdd, Amount: 1},
				},
				TierStandard: {
					Territory:   TerritoryEffect{AddTags: []string{TagReformed}, RemoveTags: []string{TagLawless, TagUnrest}, Mods: Mods{Morale: 2}},
					Tracks:      TrackDelta{Loyalty: 8, Darkness: -1},
					Victory:     VictoryDelta{Unity: 3},
					Integration: IntegrationDirective{Kind: IntegrationAdd, Amount: 1},
				},
				TierMajor: {
					Territory:   TerritoryEffect{AddTags: []string{TagReformed}, RemoveTags: []string{TagLawless, TagUnrest}, Mods: Mods{Morale: 3}},
					Tracks:      TrackDelta{Loyalty: 12, Darkness: -1},
					Victory:     VictoryDelta{VP: 1, Unity: 5},
					Integration: IntegrationDirective{Kind: IntegrationAdd, Amount: 2},
				},
			},
		},
		OutcomeLiberation: {
			Key:          OutcomeLiberation,
			Label:        "Liberation",
			AllowedTiers: all,
			Effects: map[Tier]OutcomeEffect{
				TierMinor: {
					Territory:   TerritoryEffect{Status: StatusOccupied, ClaimOwner: true, AddTags: []string{TagLiberated}, RemoveTags: []string{TagOccupied, TagSubjugated}},
					Tracks:      TrackDelta{Morale: 3},
					Victory:     VictoryDelta{VP: 1},
					Integration: IntegrationDirective{Kind: IntegrationRaiseAtLeast, Amount: 1},
				},
				TierStandard: {
					Territory:   TerritoryEffect{Status: StatusOccupied, ClaimOwner: true, AddTags: []string{TagLiberated}, RemoveTags: []string{TagOccupied, TagSubjugated}, Mods: Mods{Morale: 1}},
					Tracks:      TrackDelta{Morale: 5, Loyalty: 2},
					Victory:     VictoryDelta{VP: 2, Unity: 1},
					Integration: IntegrationDirective{Kind: IntegrationRaiseAtLeast, Amount: 1},
				},
				TierMajor: {
					Territory:   TerritoryEffect{Status: StatusOccupied, ClaimOwner: true, AddTags: []string{TagLiberated}, RemoveTags: []string{TagOccupied, TagSubjugated}, Mods: Mods{Morale: 2}},
					Tracks:      TrackDelta{Morale: 8, Loyalty: 4},
					Victory:     VictoryDelta{VP: 3, Unity: 2},
					Integration: IntegrationDirective{Kind: IntegrationRaiseAtLeast, Amount: 2},
				},
			},
		},
		OutcomeIntegration: {
			Key:               OutcomeIntegration,
			Label:             "Best Friends / Integration",
			AllowedTiers:      []Tier{TierStandard, TierMajor},
			RequiresOwnership: true,
			Effects: map[Tier]OutcomeEffect{
				TierStandard: {
					Territory:   TerritoryEffect{AddTags: []string{TagAllied}, RemoveTags: []string{TagUnrest}, Mods: Mods{TradeYield: 2}},
					Tracks:      TrackDelta{Loyalty: 10},
					Victory:     VictoryDelta{Unity: 5},
					Integration: IntegrationDirective{Kind: IntegrationAdd, Amount: 2},
				},
				TierMajor: {
					Territory:   TerritoryEffect{AddTags: []string{TagAllied}, RemoveTags: []string{TagUnrest}, Mods: Mods{TradeYield: 4, Morale: 1}},
					Tracks:      TrackDelta{Loyalty: 15},
					Victory:     VictoryDelta{VP: 1, Unity: 8},
					Integration: IntegrationDirective{Kind: IntegrationAdd, Amount: 3},
				},
			},
		},
		OutcomeRetribution: {
			Key:               OutcomeRetribution,
			Label:             "Retribution / Subjugation",
			AllowedTiers:      all,
			RequiresOwnership: true,
			Effects: map[Tier]OutcomeEffect{
				TierMinor: {
					Territory:   TerritoryEffect{AddTags: []string{TagSubjugated}, Mods: Mods{Defense: 1, EnemyLoyalty: -5}},
					Tracks:      TrackDelta{Morale: 3, Loyalty: -2, Darkness: 1},
					Victory:     VictoryDelta{VP: 1},
					Integration: IntegrationDirective{Kind: IntegrationRaiseAtLeast, Amount: 1},
				},
				TierStandard: {
					Territory:   TerritoryEffect{AddTags: []string{TagSubjugated}, Mods: Mods{Defense: 2, EnemyLoyalty: -8}},
					Tracks:      TrackDelta{Morale: 4, Loyalty: -3, Darkness: 1},
					Victory:     VictoryDelta{VP: 2, Unity: -1},
					Integration: IntegrationDirective{Kind: IntegrationRaiseAtLeast, Amount: 2},
				},
				TierMajor: {
					Territory:   TerritoryEffect{AddTags: []string{TagSubjugated, TagFortified}, Mods: Mods{Defense: 3, EnemyLoyalty: -12}},
					Tracks:      TrackDelta{Morale: 5, Loyalty: -5, Darkness: 2},
					Victory:     VictoryDelta{VP: 3, Unity: -2},
					Integration: IntegrationDirective{Kind: IntegrationRaiseAtLeast, Amount: 3},
				},
			},
		},
		OutcomeSaltTheEarth: {
			Key:               OutcomeSaltTheEarth,
			Label:             "Salt the Earth",
			AllowedTiers:      all,
			RequiresOwnership: true,
			Effects: map[Tier]OutcomeEffect{
				TierMinor: {
					Territory:   TerritoryEffect{Status: StatusScorched, AddTags: []string{TagScorched}, RemoveTags: []string{TagFortified, TagAllied}, Mods: Mods{Radiation: 2, TradeYield: -2}},
					Tracks:      TrackDelta{Morale: -2, Loyalty: -5, Darkness: 2},
					Integration: IntegrationDirective{Kind: IntegrationReset},
				},
				TierStandard: {
					Territory:   TerritoryEffect{Status: StatusScorched, AddTags: []string{TagScorched}, RemoveTags: []string{TagFortified, TagAllied, TagReformed}, Mods: Mods{Radiation: 4, TradeYield: -4}},
					Tracks:      TrackDelta{Morale: -3, Loyalty: -8, Darkness: 3},
					Victory:     VictoryDelta{Unity: -3},
					Integration: IntegrationDirective{Kind: IntegrationReset},
				},
				TierMajor: {
					Territory:   TerritoryEffect{Status: StatusScorched, AddTags: []string{TagScorched, TagRadiated}, RemoveTags: []string{TagFortified, TagAllied, TagReformed}, Mods: Mods{Radiation: 6, TradeYield: -6}},
					Tracks:      TrackDelta{Morale: -4, Loyalty: -10, Darkness: 4},
					Victory:     VictoryDelta{Unity: -5},
					Integration: IntegrationDirective{Kind: IntegrationReset},
				},
			},
		},
	}
}

// Validate enforces the table's structural rules: every allowed tier has an
// effect and only salt-the-earth may reset integration.
func (t OutcomeTable) Validate() error {
	for key, rule := range t {
		if rule.Key != key {
			return fmt.Errorf("outcome %q registered under key %q", rule.Key, key)
		}
		for _, tier := range rule.AllowedTiers {
			eff, ok := rule.Effects[tier]
			if !ok {
				return fmt.Errorf("%w: %s tier %d", ErrOutcomeMissingTier, key, tier)
			}
			if eff.Integration.Kind == IntegrationReset && key != OutcomeSaltTheEarth {
				return fmt.Errorf("%w: %s", ErrResetOutsideSalt, key)
			}
		}
	}
	return nil
}

type OutcomeRequest struct {
	FactionID string
	Outcome   OutcomeKey
	Tier      Tier
	At        time.Time
}

// CheckOutcome runs the preconditions against committed territory state only.
func (t OutcomeTable) CheckOutcome(req OutcomeRequest, territory Territory) (OutcomeRule, OutcomeEffect, error) {
	rule, ok := t[req.Outcome]
	if !ok {
		return OutcomeRule{}, OutcomeEffect{}, ErrUnknownOutcome
	}
	if rule.RequiresOwnership && territory.OwnerID != req.FactionID {
		return OutcomeRule{}, OutcomeEffect{}, ErrNotOwner
	}
	if !rule.Allows(req.Tier) {
		return OutcomeRule{}, OutcomeEffect{}, ErrTierNotAllowed
	}
	if territory.Status == StatusScorched {
		return OutcomeRule{}, OutcomeEffect{}, ErrTerritoryScorched
	}
	eff, ok := rule.Effects[req.Tier]
	if !ok {
		return OutcomeRule{}, OutcomeEffect{}, ErrOutcomeMissingTier
	}
	return rule, eff, nil
}

type OutcomeApplication struct {
	Outcome        OutcomeKey       `json:"outcome"`
	Tier           Tier             `json:"tier"`
	Effect         OutcomeEffect    `json:"effect"`
	StatusBefore   TerritoryStatus  `json:"status_before"`
	StatusAfter    TerritoryStatus  `json:"status_after"`
	OwnerBefore    string           `json:"owner_before,omitempty"`
	OwnerAfter     string           `json:"owner_after,omitempty"`
	ProgressBefore int              `json:"progress_before"`
	ProgressAfter  int              `json:"progress_after"`
	StageAfter     IntegrationStage `json:"stage_after"`
	TracksAfter    Tracks           `json:"tracks_after"`
	VictoryAfter   Victory          `json:"victory_after"`
	TerritoryMods  Mods             `json:"territory_mods_after"`
}

// ResolveOutcome applies eff to copies of faction and territory. It is pure:
// callers persist the returned values.
func ResolveOutcome(req OutcomeRequest, eff OutcomeEffect, faction Faction, territory Territory) (Faction, Territory, OutcomeApplication) {
	app := OutcomeApplication{
		Outcome:        req.Outcome,
		Tier:           req.Tier,
		Effect:         eff,
		StatusBefore:   territory.Status,
		OwnerBefore:    territory.OwnerID,
		ProgressBefore: territory.Integration.Progress,
	}

	territory.Tags = append([]string(nil), territory.Tags...)
	territory.Integration.History = append([]IntegrationChange(nil), territory.Integration.History...)
	faction.Tags = append([]string(nil), faction.Tags...)
	faction.Log = append([]LogEntry(nil), faction.Log...)

	if eff.Territory.ClaimOwner {
		// A unit follows its owner's turn counter.
		if territory.OwnerID != faction.ID {
			territory.Turn = faction.Turn
		}
		territory.OwnerID = faction.ID
	}
	if eff.Territory.Status != "" {
		territory.Status = eff.Territory.Status
	}
	territory.ApplyTags(eff.Territory.AddTags, eff.Territory.RemoveTags)
	territory.Mods = territory.Mods.Add(eff.Territory.Mods)

	before, after := territory.Integration.Apply(eff.Integration, IntegrationStamp{At: req.At, Outcome: req.Outcome, Tier: req.Tier})
	territory.syncSettlement(before, after)

	faction.ApplyTracks(eff.Tracks)
	faction.ApplyVictory(eff.Victory)

	app.StatusAfter = territory.Status
	app.OwnerAfter = territory.OwnerID
	app.ProgressAfter = after
	app.StageAfter = territory.Integration.Stage()
	app.TracksAfter = faction.Tracks
	app.VictoryAfter = faction.Victory
	app.TerritoryMods = territory.Mods
	return faction, territory, app
}
