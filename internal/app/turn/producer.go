package turn

import (
	"dominion/internal/app/pending"
	"dominion/internal/domain/campaign"
)

// Snapshot is the committed state read once at the start of a sweep.
// Producers only see this view, so the order entities are processed in never
// changes what they contribute.
type Snapshot struct {
	Turn        int
	Factions    map[string]campaign.Faction
	Territories []campaign.Territory
}

type Contribution struct {
	Target  pending.Target
	Effects campaign.PendingEffects
}

// Producer generates effects that exist because a turn passes, such as income
// or environmental hazards. Produce must be pure.
type Producer interface {
	Name() string
	Produce(snap Snapshot) []Contribution
}

type TradeIncomeProducer struct{}

func (TradeIncomeProducer) Name() string { return "trade_income" }

func (TradeIncomeProducer) Produce(snap Snapshot) []Contribution {
	var out []Contribution
	for _, t := range snap.Territories {
		if !t.Owned() || t.Status == campaign.StatusScorched || t.ThisTurn.Blockaded {
			continue
		}
		if _, ok := snap.Factions[t.OwnerID]; !ok {
			continue
		}
		income := t.Mods.TradeYield / campaign.TradeYieldPerEconomy
		if income <= 0 {
			continue
		}
		var res campaign.LedgerDelta
		res[campaign.Economy] = income
		out = append(out, Contribution{Target: pending.FactionTarget(t.OwnerID), Effects: campaign.PendingEffects{Resources: res}})
	}
	return out
}

type RadiationHazardProducer struct{}

func (RadiationHazardProducer) Name() string { return "radiation_hazard" }

func (RadiationHazardProducer) Produce(snap Snapshot) []Contribution {
	var out []Contribution
	for _, t := range snap.Territories {
		if !campaign.HasTag(t.Tags, campaign.TagRadiated) {
			continue
		}
		out = append(out, Contribution{
			Target:  pending.TerritoryTarget(t.ID),
			Effects: campaign.PendingEffects{Mods: campaign.Mods{Radiation: campaign.RadiationPerTurn}},
		})
	}
	return out
}

func DefaultProducers() []Producer {
	return []Producer{TradeIncomeProducer{}, RadiationHazardProducer{}}
}

func collect(producers []Producer, snap Snapshot) map[pending.Target]campaign.PendingEffects {
	out := map[pending.Target]campaign.PendingEffects{}
	for _, p := range producers {
		for _, c := range p.Produce(snap) {
			out[c.Target] = campaign.MergePending(out[c.Target], c.Effects)
		}
	}
	return out
}
