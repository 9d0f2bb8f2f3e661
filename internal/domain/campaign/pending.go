package campaign

import "sort"

type TrackDelta struct {
	Morale   int `json:"morale,omitempty"`
	Loyalty  int `json:"loyalty,omitempty"`
	Darkness int `json:"darkness,omitempty"`
}

// PendingEffects accumulates not-yet-applied effects for one entity. It is a
// merged sum, not an event list: merging is commutative and associative.
type PendingEffects struct {
	Resources  LedgerDelta  `json:"resources"`
	Tracks     TrackDelta   `json:"tracks"`
	Victory    VictoryDelta `json:"victory"`
	Mods       Mods         `json:"mods"`
	AddTags    []string     `json:"addTags,omitempty"`
	RemoveTags []string     `json:"removeTags,omitempty"`
	NextTurn   TurnFlags    `json:"nextTurn"`
}

func (p PendingEffects) IsEmpty() bool {
	return p.Resources.IsZero() &&
		p.Tracks == TrackDelta{} &&
		p.Victory == VictoryDelta{} &&
		p.Mods == Mods{} &&
		len(p.AddTags) == 0 &&
		len(p.RemoveTags) == 0 &&
		!p.NextTurn.Any()
}

// HasFactionOnlyFields reports fields a territory buffer cannot apply.
func (p PendingEffects) HasFactionOnlyFields() bool {
	return !p.Resources.IsZero() || p.Tracks != TrackDelta{} || p.Victory != VictoryDelta{}
}

// HasTerritoryOnlyFields reports fields a faction buffer cannot apply.
func (p PendingEffects) HasTerritoryOnlyFields() bool {
	return p.Mods != Mods{}
}

func MergePending(a, b PendingEffects) PendingEffects {
	var out PendingEffects
	for i := range out.Resources {
		out.Resources[i] = a.Resources[i] + b.Resources[i]
	}
	out.Tracks = TrackDelta{
		Morale:   a.Tracks.Morale + b.Tracks.Morale,
		Loyalty:  a.Tracks.Loyalty + b.Tracks.Loyalty,
		Darkness: a.Tracks.Darkness + b.Tracks.Darkness,
	}
	out.Victory = VictoryDelta{
		VP:    a.Victory.VP + b.Victory.VP,
		Unity: a.Victory.Unity + b.Victory.Unity,
	}
	out.Mods = a.Mods.Add(b.Mods)
	out.AddTags = unionTags(a.AddTags, b.AddTags)
	out.RemoveTags = unionTags(a.RemoveTags, b.RemoveTags)
	out.NextTurn = a.NextTurn.Or(b.NextTurn)
	return out
}

// MergeInto merges c into the buffer behind slot, allocating it when unset.
func MergeInto(slot **PendingEffects, c PendingEffects) {
	if c.IsEmpty() {
		return
	}
	base := PendingEffects{}
	if *slot != nil {
		base = **slot
	}
	merged := MergePending(base, c)
	*slot = &merged
}

func unionTags(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, tag := range list {
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// applyTags removes first, then adds, so an add queued in the same turn as a remove wins.
func applyTags(current, add, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, tag := range remove {
		drop[tag] = struct{}{}
	}
	kept := make([]string, 0, len(current)+len(add))
	for _, tag := range current {
		if _, ok := drop[tag]; !ok {
			kept = append(kept, tag)
		}
	}
	out := unionTags(kept, add)
	if out == nil {
		return []string{}
	}
	return out
}

func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
