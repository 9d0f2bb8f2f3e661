package activity

import (
	"context"
	"fmt"

	"dominion/internal/app/pending"
	"dominion/internal/domain/campaign"
)

const (
	KeyFortify          = "fortify"
	KeyTradeCaravan     = "trade_caravan"
	KeyPropaganda       = "propaganda"
	KeySabotage         = "sabotage"
	KeyFestival         = "festival"
	KeyDecontaminate    = "decontaminate"
	KeyMobilize         = "mobilize"
	KeyEnvoy            = "envoy"
	KeyResourceTransfer = "resource_transfer"
)

func builtinSpecs() []Spec {
	return []Spec{
		{Key: KeyFortify, Label: "Fortify", Cost: campaign.LedgerDelta{campaign.Logistics: 2, campaign.Violence: 1}, TargetTerritory: true, Handler: fortifyHandler{}},
		{Key: KeyTradeCaravan, Label: "Trade Caravan", Cost: campaign.LedgerDelta{campaign.Economy: 5}, TargetTerritory: true, Handler: tradeCaravanHandler{}},
		{Key: KeyPropaganda, Label: "Propaganda", Cost: campaign.LedgerDelta{campaign.Softpower: 2, campaign.Culture: 1}, Handler: factionEffectHandler{
			effects: campaign.PendingEffects{Tracks: campaign.TrackDelta{Morale: 5, Loyalty: 3}},
			verb:    "spread propaganda",
		}},
		{Key: KeySabotage, Label: "Sabotage", Cost: campaign.LedgerDelta{campaign.Intrigue: 3}, TargetTerritory: true, Handler: sabotageHandler{}},
		{Key: KeyFestival, Label: "Festival", Cost: campaign.LedgerDelta{campaign.Culture: 2, campaign.Faith: 1, campaign.Economy: 1}, Handler: factionEffectHandler{
			effects: campaign.PendingEffects{Victory: campaign.VictoryDelta{Unity: 2}, NextTurn: campaign.TurnFlags{Festival: true}},
			verb:    "announced a festival",
		}},
		{Key: KeyDecontaminate, Label: "Decontaminate", Cost: campaign.LedgerDelta{campaign.Logistics: 3, campaign.Nonlethal: 1}, TargetTerritory: true, Handler: decontaminateHandler{}},
		{Key: KeyMobilize, Label: "Mobilize", Cost: campaign.LedgerDelta{campaign.Economy: 3}, Handler: factionEffectHandler{
			effects: campaign.PendingEffects{Resources: campaign.LedgerDelta{campaign.Violence: 2}, NextTurn: campaign.TurnFlags{Mobilized: true}},
			verb:    "mobilized",
		}},
		{Key: KeyEnvoy, Label: "Envoy", Cost: campaign.LedgerDelta{campaign.Diplomacy: 2}, Handler: factionEffectHandler{
			effects: campaign.PendingEffects{Tracks: campaign.TrackDelta{Darkness: -1}, Victory: campaign.VictoryDelta{Unity: 1}},
			verb:    "sent an envoy",
		}},
		{Key: KeyResourceTransfer, Label: "Resource Transfer", Handler: resourceTransferHandler{}},
	}
}

func requireOwnedTerritory(ac *ActivityContext) error {
	t := ac.View.Territory
	if t == nil {
		return ErrTerritoryRequired
	}
	if t.OwnerID != ac.View.Faction.ID {
		return campaign.ErrNotOwner
	}
	if t.Status == campaign.StatusScorched {
		return campaign.ErrTerritoryScorched
	}
	return nil
}

func queueTerritory(ac *ActivityContext, effects campaign.PendingEffects, description string) {
	ac.Plan.Effects = append(ac.Plan.Effects, QueuedEffect{Target: pending.TerritoryTarget(ac.View.Territory.ID), Effects: effects})
	ac.Plan.Description = description
}

type fortifyHandler struct{ BaseHandler }

func (fortifyHandler) Precheck(_ context.Context, _ UseCase, ac *ActivityContext) error {
	return requireOwnedTerritory(ac)
}

func (fortifyHandler) Plan(_ context.Context, _ UseCase, ac *ActivityContext) error {
	queueTerritory(ac, campaign.PendingEffects{
		Mods:    campaign.Mods{Defense: 2},
		AddTags: []string{campaign.TagFortified},
	}, fmt.Sprintf("%s fortified %s", ac.View.Faction.Name, ac.View.Territory.ID))
	return nil
}

type tradeCaravanHandler struct{ BaseHandler }

func (tradeCaravanHandler) Precheck(_ context.Context, _ UseCase, ac *ActivityContext) error {
	return requireOwnedTerritory(ac)
}

func (tradeCaravanHandler) Plan(_ context.Context, _ UseCase, ac *ActivityContext) error {
	queueTerritory(ac, campaign.PendingEffects{
		Mods: campaign.Mods{TradeYield: 10},
	}, fmt.Sprintf("%s sent a trade caravan to %s", ac.View.Faction.Name, ac.View.Territory.ID))
	return nil
}

type sabotageHandler struct{ BaseHandler }

// Sabotage targets somebody else's territory.
func (sabotageHandler) Precheck(_ context.Context, _ UseCase, ac *ActivityContext) error {
	t := ac.View.Territory
	if t == nil {
		return ErrTerritoryRequired
	}
	if t.OwnerID == "" || t.OwnerID == ac.View.Faction.ID {
		return fmt.Errorf("%w: sabotage needs an enemy territory", ErrInvalidParams)
	}
	if t.Status == campaign.StatusScorched {
		return campaign.ErrTerritoryScorched
	}
	return nil
}

func (sabotageHandler) Plan(_ context.Context, _ UseCase, ac *ActivityContext) error {
	queueTerritory(ac, campaign.PendingEffects{
		Mods:     campaign.Mods{Defense: -2, EnemyLoyalty: -3},
		AddTags:  []string{campaign.TagSabotaged},
		NextTurn: campaign.TurnFlags{Blockaded: true},
	}, fmt.Sprintf("%s sabotaged %s", ac.View.Faction.Name, ac.View.Territory.ID))
	return nil
}

type decontaminateHandler struct{ BaseHandler }

func (decontaminateHandler) Precheck(_ context.Context, _ UseCase, ac *ActivityContext) error {
	t := ac.View.Territory
	if t == nil {
		return ErrTerritoryRequired
	}
	if t.OwnerID != ac.View.Faction.ID {
		return campaign.ErrNotOwner
	}
	return nil
}

func (decontaminateHandler) Plan(_ context.Context, _ UseCase, ac *ActivityContext) error {
	queueTerritory(ac, campaign.PendingEffects{
		Mods:       campaign.Mods{Radiation: -2},
		RemoveTags: []string{campaign.TagRadiated},
	}, fmt.Sprintf("%s decontaminated %s", ac.View.Faction.Name, ac.View.Territory.ID))
	return nil
}

type factionEffectHandler struct {
	BaseHandler
	effects campaign.PendingEffects
	verb    string
}

func (h factionEffectHandler) Plan(_ context.Context, _ UseCase, ac *ActivityContext) error {
	ac.Plan.Effects = append(ac.Plan.Effects, QueuedEffect{Target: pending.FactionTarget(ac.View.Faction.ID), Effects: h.effects})
	ac.Plan.Description = fmt.Sprintf("%s %s", ac.View.Faction.Name, h.verb)
	return nil
}

// resourceTransferHandler debits the sender now and credits the recipient
// through its pending buffer, so the credit lands at the recipient's next turn.
type resourceTransferHandler struct{ BaseHandler }

func (resourceTransferHandler) Precheck(ctx context.Context, uc UseCase, ac *ActivityContext) error {
	p := ac.In.Params
	if p.ToFactionID == "" || p.ToFactionID == ac.View.Faction.ID || p.Amount <= 0 {
		return ErrInvalidParams
	}
	if _, ok := campaign.ParseCategory(p.Category); !ok {
		return ErrInvalidParams
	}
	to, err := uc.Factions.GetByID(ctx, p.ToFactionID)
	if err != nil {
		return err
	}
	if to.Archived {
		return campaign.ErrFactionArchived
	}
	return nil
}

func (resourceTransferHandler) Plan(_ context.Context, _ UseCase, ac *ActivityContext) error {
	p := ac.In.Params
	c, _ := campaign.ParseCategory(p.Category)
	var credit campaign.LedgerDelta
	credit[c] = p.Amount
	var price campaign.LedgerDelta
	price[c] = p.Amount

	ac.Plan.Cost = price
	ac.Plan.Effects = append(ac.Plan.Effects, QueuedEffect{
		Target:  pending.FactionTarget(p.ToFactionID),
		Effects: campaign.PendingEffects{Resources: credit},
	})
	ac.Plan.Description = fmt.Sprintf("%s sent %d %s to %s", ac.View.Faction.Name, p.Amount, c, p.ToFactionID)
	return nil
}
