package gormrepo

import (
	"encoding/json"
	"fmt"

	"dominion/internal/adapter/repo/gorm/model"
	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"
)

func marshalJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode column: %w", err)
	}
	return b, nil
}

func unmarshalJSON(b []byte, out any) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: decode column: %v", ports.ErrCorrupt, err)
	}
	return nil
}

func marshalPending(p *campaign.PendingEffects) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return marshalJSON(p)
}

func unmarshalPending(b []byte) (*campaign.PendingEffects, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var p campaign.PendingEffects
	if err := unmarshalJSON(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// rawColumn keeps legacy payloads verbatim; decoding them is the fold's job.
func rawColumn(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func factionToModel(f campaign.Faction) (model.Faction, error) {
	m := model.Faction{
		ID:            f.ID,
		Name:          f.Name,
		Violence:      int32(f.Ledger[campaign.Violence]),
		Nonlethal:     int32(f.Ledger[campaign.Nonlethal]),
		Intrigue:      int32(f.Ledger[campaign.Intrigue]),
		Economy:       int32(f.Ledger[campaign.Economy]),
		Softpower:     int32(f.Ledger[campaign.Softpower]),
		Diplomacy:     int32(f.Ledger[campaign.Diplomacy]),
		Logistics:     int32(f.Ledger[campaign.Logistics]),
		Culture:       int32(f.Ledger[campaign.Culture]),
		Faith:         int32(f.Ledger[campaign.Faith]),
		LegacyPending: rawColumn(f.LegacyPending),
		Morale:        int32(f.Tracks.Morale),
		Loyalty:       int32(f.Tracks.Loyalty),
		Darkness:      int32(f.Tracks.Darkness),
		Vp:            int32(f.Victory.VP),
		Unity:         int32(f.Victory.Unity),
		Turn:          int32(f.Turn),
		Archived:      f.Archived,
		Version:       f.Version,
		UpdatedAt:     f.UpdatedAt,
	}
	var err error
	if m.Pending, err = marshalPending(f.Pending); err != nil {
		return model.Faction{}, err
	}
	if m.Tags, err = marshalJSON(nonNilTags(f.Tags)); err != nil {
		return model.Faction{}, err
	}
	if m.ThisTurn, err = marshalJSON(f.ThisTurn); err != nil {
		return model.Faction{}, err
	}
	log := f.Log
	if log == nil {
		log = []campaign.LogEntry{}
	}
	if m.Log, err = marshalJSON(log); err != nil {
		return model.Faction{}, err
	}
	return m, nil
}

func factionFromModel(m model.Faction) (campaign.Faction, error) {
	f := campaign.Faction{
		ID:   m.ID,
		Name: m.Name,
		Ledger: campaign.Ledger{
			campaign.Violence:  int(m.Violence),
			campaign.Nonlethal: int(m.Nonlethal),
			campaign.Intrigue:  int(m.Intrigue),
			campaign.Economy:   int(m.Economy),
			campaign.Softpower: int(m.Softpower),
			campaign.Diplomacy: int(m.Diplomacy),
			campaign.Logistics: int(m.Logistics),
			campaign.Culture:   int(m.Culture),
			campaign.Faith:     int(m.Faith),
		},
		Tracks:    campaign.Tracks{Morale: int(m.Morale), Loyalty: int(m.Loyalty), Darkness: int(m.Darkness)},
		Victory:   campaign.Victory{VP: uint(m.Vp), Unity: int(m.Unity)},
		Turn:      int(m.Turn),
		Archived:  m.Archived,
		Version:   m.Version,
		UpdatedAt: m.UpdatedAt,
		Tags:      []string{},
		Log:       []campaign.LogEntry{},
	}
	if len(m.LegacyPending) > 0 {
		f.LegacyPending = append(json.RawMessage(nil), m.LegacyPending...)
	}
	var err error
	if f.Pending, err = unmarshalPending(m.Pending); err != nil {
		return campaign.Faction{}, fmt.Errorf("faction %s pending: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.Tags, &f.Tags); err != nil {
		return campaign.Faction{}, fmt.Errorf("faction %s tags: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.ThisTurn, &f.ThisTurn); err != nil {
		return campaign.Faction{}, fmt.Errorf("faction %s this_turn: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.Log, &f.Log); err != nil {
		return campaign.Faction{}, fmt.Errorf("faction %s log: %w", m.ID, err)
	}
	return f, nil
}

func territoryToModel(t campaign.Territory) (model.Territory, error) {
	m := model.Territory{
		ID:             t.ID,
		Status:         string(t.Status),
		Progress:       int32(t.Integration.Progress),
		Wilderness:     t.Wilderness,
		PopulationTier: int32(t.PopulationTier),
		SettlementSize: t.SettlementSize,
		LegacyPending:  rawColumn(t.LegacyPending),
		Turn:           int32(t.Turn),
		Version:        t.Version,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.OwnerID != "" {
		owner := t.OwnerID
		m.OwnerID = &owner
	}
	var err error
	if m.Pending, err = marshalPending(t.Pending); err != nil {
		return model.Territory{}, err
	}
	if m.Tags, err = marshalJSON(nonNilTags(t.Tags)); err != nil {
		return model.Territory{}, err
	}
	if m.Mods, err = marshalJSON(t.Mods); err != nil {
		return model.Territory{}, err
	}
	history := t.Integration.History
	if history == nil {
		history = []campaign.IntegrationChange{}
	}
	if m.History, err = marshalJSON(history); err != nil {
		return model.Territory{}, err
	}
	if m.ThisTurn, err = marshalJSON(t.ThisTurn); err != nil {
		return model.Territory{}, err
	}
	return m, nil
}

func territoryFromModel(m model.Territory) (campaign.Territory, error) {
	t := campaign.Territory{
		ID:             m.ID,
		Status:         campaign.TerritoryStatus(m.Status),
		Integration:    campaign.Integration{Progress: int(m.Progress)},
		Wilderness:     m.Wilderness,
		PopulationTier: int(m.PopulationTier),
		SettlementSize: m.SettlementSize,
		Turn:           int(m.Turn),
		Version:        m.Version,
		UpdatedAt:      m.UpdatedAt,
		Tags:           []string{},
	}
	if m.OwnerID != nil {
		t.OwnerID = *m.OwnerID
	}
	if len(m.LegacyPending) > 0 {
		t.LegacyPending = append(json.RawMessage(nil), m.LegacyPending...)
	}
	var err error
	if t.Pending, err = unmarshalPending(m.Pending); err != nil {
		return campaign.Territory{}, fmt.Errorf("territory %s pending: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.Tags, &t.Tags); err != nil {
		return campaign.Territory{}, fmt.Errorf("territory %s tags: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.Mods, &t.Mods); err != nil {
		return campaign.Territory{}, fmt.Errorf("territory %s mods: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.History, &t.Integration.History); err != nil {
		return campaign.Territory{}, fmt.Errorf("territory %s history: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.ThisTurn, &t.ThisTurn); err != nil {
		return campaign.Territory{}, fmt.Errorf("territory %s this_turn: %w", m.ID, err)
	}
	return t, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// decodeFactions keeps every row that decodes and reports the rest.
func decodeFactions(rows []model.Faction) ([]campaign.Faction, error) {
	out := make([]campaign.Faction, 0, len(rows))
	var corrupt []string
	for _, m := range rows {
		f, err := factionFromModel(m)
		if err != nil {
			corrupt = append(corrupt, m.ID)
			continue
		}
		out = append(out, f)
	}
	if len(corrupt) > 0 {
		return out, &ports.CorruptRecordsError{Kind: "faction", IDs: corrupt}
	}
	return out, nil
}

func decodeTerritories(rows []model.Territory) ([]campaign.Territory, error) {
	out := make([]campaign.Territory, 0, len(rows))
	var corrupt []string
	for _, m := range rows {
		t, err := territoryFromModel(m)
		if err != nil {
			corrupt = append(corrupt, m.ID)
			continue
		}
		out = append(out, t)
	}
	if len(corrupt) > 0 {
		return out, &ports.CorruptRecordsError{Kind: "territory", IDs: corrupt}
	}
	return out, nil
}
