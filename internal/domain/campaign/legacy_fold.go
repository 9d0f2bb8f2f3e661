package campaign

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedLegacyPending = errors.New("malformed legacy pending payload")

// PostRoundEffects is the payload shape written before effects were settled per turn.
type PostRoundEffects struct {
	Resources         map[string]int  `json:"resources,omitempty"`
	MoraleDelta       int             `json:"moraleDelta,omitempty"`
	LoyaltyDelta      int             `json:"loyaltyDelta,omitempty"`
	DarknessDelta     int             `json:"darknessDelta,omitempty"`
	VPDelta           int             `json:"vpDelta,omitempty"`
	UnityDelta        int             `json:"unityDelta,omitempty"`
	DefenseDelta      int             `json:"defenseDelta,omitempty"`
	TradeYieldDelta   int             `json:"tradeYieldDelta,omitempty"`
	HexMoraleDelta    int             `json:"hexMoraleDelta,omitempty"`
	EnemyLoyaltyDelta int             `json:"enemyLoyaltyDelta,omitempty"`
	RadiationDelta    int             `json:"radiationDelta,omitempty"`
	AddModifiers      []string        `json:"addModifiers,omitempty"`
	RemoveModifiers   []string        `json:"removeModifiers,omitempty"`
	NextRound         map[string]bool `json:"nextRound,omitempty"`
}

func (p PostRoundEffects) toCanonical() (PendingEffects, error) {
	resources, err := DeltaFromMap(p.Resources)
	if err != nil {
		return PendingEffects{}, err
	}
	var flags TurnFlags
	for name, on := range p.NextRound {
		if !on {
			continue
		}
		switch name {
		case "mobilized":
			flags.Mobilized = true
		case "blockaded":
			flags.Blockaded = true
		case "festival":
			flags.Festival = true
		default:
			return PendingEffects{}, fmt.Errorf("unknown nextRound flag %q", name)
		}
	}
	return PendingEffects{
		Resources: resources,
		Tracks: TrackDelta{
			Morale:   p.MoraleDelta,
			Loyalty:  p.LoyaltyDelta,
			Darkness: p.DarknessDelta,
		},
		Victory: VictoryDelta{VP: p.VPDelta, Unity: p.UnityDelta},
		Mods: Mods{
			Defense:      p.DefenseDelta,
			TradeYield:   p.TradeYieldDelta,
			Morale:       p.HexMoraleDelta,
			EnemyLoyalty: p.EnemyLoyaltyDelta,
			Radiation:    p.RadiationDelta,
		},
		AddTags:    unionTags(p.AddModifiers, nil),
		RemoveTags: unionTags(p.RemoveModifiers, nil),
		NextTurn:   flags,
	}, nil
}

// DecodeLegacyPending recognises the post-round shape and a turn-shaped payload
// parked in the legacy slot. Anything else wraps ErrMalformedLegacyPending.
func DecodeLegacyPending(raw json.RawMessage) (PendingEffects, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return PendingEffects{}, nil
	}

	var postRound PostRoundEffects
	if err := decodeStrict(trimmed, &postRound); err == nil {
		out, convErr := postRound.toCanonical()
		if convErr != nil {
			return PendingEffects{}, fmt.Errorf("%w: %v", ErrMalformedLegacyPending, convErr)
		}
		return out, nil
	}

	var turnShaped PendingEffects
	if err := decodeStrict(trimmed, &turnShaped); err == nil {
		return MergePending(PendingEffects{}, turnShaped), nil
	}
	return PendingEffects{}, ErrMalformedLegacyPending
}

func decodeStrict(b []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

type FoldResult struct {
	Changed   bool
	Malformed bool
	// Dropped keeps the raw payload when it could not be decoded.
	Dropped json.RawMessage
}

// FoldLegacy merges the legacy slot into the canonical buffer and clears the
// slot. Changed is set only when a payload with effects was merged or a
// malformed one dropped, so an empty slot ("", null, {}) never forces a write.
func FoldLegacy(pending **PendingEffects, legacy *json.RawMessage) FoldResult {
	if legacy == nil || len(*legacy) == 0 {
		return FoldResult{}
	}
	raw := *legacy
	*legacy = nil

	decoded, err := DecodeLegacyPending(raw)
	if err != nil {
		return FoldResult{Changed: true, Malformed: true, Dropped: raw}
	}
	if decoded.IsEmpty() {
		return FoldResult{}
	}
	MergeInto(pending, decoded)
	return FoldResult{Changed: true}
}

func (f *Faction) FoldLegacy() FoldResult {
	return FoldLegacy(&f.Pending, &f.LegacyPending)
}

func (t *Territory) FoldLegacy() FoldResult {
	return FoldLegacy(&t.Pending, &t.LegacyPending)
}
