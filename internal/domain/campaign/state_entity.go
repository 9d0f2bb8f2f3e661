package campaign

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrFactionArchived = errors.New("faction is archived")

func NewFaction(id, name string) Faction {
	return Faction{
		ID:      id,
		Name:    name,
		Tracks:  Tracks{Morale: StartingTrack, Loyalty: StartingTrack},
		Victory: Victory{Unity: StartingTrack},
		Tags:    []string{},
		Log:     []LogEntry{},
	}
}

func NewTerritory(id string, wilderness bool) Territory {
	t := Territory{
		ID:         id,
		Status:     StatusUnclaimed,
		Tags:       []string{},
		Wilderness: wilderness,
	}
	if wilderness {
		t.SettlementSize = stageSettlement[StageWild].size
	}
	return t
}

func NewLogEntry(typ LogType, at time.Time, message string, payload map[string]any) LogEntry {
	return LogEntry{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: at,
		Message:    message,
		Payload:    payload,
	}
}

// AppendLog keeps the most recent ActivityLogCap entries, dropping the oldest.
func (f *Faction) AppendLog(entries ...LogEntry) {
	for _, e := range entries {
		if e.FactionID == "" {
			e.FactionID = f.ID
		}
		f.Log = append(f.Log, e)
	}
	if over := len(f.Log) - ActivityLogCap; over > 0 {
		f.Log = append([]LogEntry(nil), f.Log[over:]...)
	}
}

func (f *Faction) ApplyTracks(d TrackDelta) {
	f.Tracks.Morale = clamp(f.Tracks.Morale+d.Morale, MinTrack, MaxMorale)
	f.Tracks.Loyalty = clamp(f.Tracks.Loyalty+d.Loyalty, MinTrack, MaxLoyalty)
	f.Tracks.Darkness = clamp(f.Tracks.Darkness+d.Darkness, MinTrack, MaxDarkness)
}

func (f *Faction) ApplyVictory(d VictoryDelta) {
	vp := int(f.Victory.VP) + d.VP
	if vp < 0 {
		vp = 0
	}
	f.Victory.VP = uint(vp)
	f.Victory.Unity = clamp(f.Victory.Unity+d.Unity, MinTrack, MaxUnity)
}

func (f *Faction) ApplyTags(add, remove []string) {
	f.Tags = applyTags(f.Tags, add, remove)
}

func (t *Territory) ApplyTags(add, remove []string) {
	t.Tags = applyTags(t.Tags, add, remove)
}

// TurnApplication describes what draining one buffer did.
type TurnApplication struct {
	Applied PendingEffects         `json:"applied"`
	Clamped map[Category]Underflow `json:"clamped,omitempty"`
	// Ignored holds fields this kind of entity cannot carry.
	Ignored *PendingEffects `json:"ignored,omitempty"`
}

// DrainPending applies the buffer at a turn boundary and unsets it. Ledger
// underflow is clamped to zero here; turn effects are bonuses, not spends.
func (f *Faction) DrainPending(turn int) TurnApplication {
	p := PendingEffects{}
	if f.Pending != nil {
		p = *f.Pending
	}
	var out TurnApplication
	f.Ledger, out.Clamped = f.Ledger.ApplyClamped(p.Resources)
	f.ApplyTracks(p.Tracks)
	f.ApplyVictory(p.Victory)
	f.ApplyTags(p.AddTags, p.RemoveTags)
	f.ThisTurn = p.NextTurn
	if p.HasTerritoryOnlyFields() {
		out.Ignored = &PendingEffects{Mods: p.Mods}
		p.Mods = Mods{}
	}
	out.Applied = p
	f.Pending = nil
	f.LegacyPending = nil
	f.Turn = turn
	return out
}

func (t *Territory) DrainPending(turn int) TurnApplication {
	p := PendingEffects{}
	if t.Pending != nil {
		p = *t.Pending
	}
	var out TurnApplication
	t.Mods = t.Mods.Add(p.Mods)
	t.ApplyTags(p.AddTags, p.RemoveTags)
	t.ThisTurn = p.NextTurn
	if p.HasFactionOnlyFields() {
		out.Ignored = &PendingEffects{Resources: p.Resources, Tracks: p.Tracks, Victory: p.Victory}
		p.Resources, p.Tracks, p.Victory = LedgerDelta{}, TrackDelta{}, VictoryDelta{}
	}
	out.Applied = p
	t.Pending = nil
	t.LegacyPending = nil
	t.Turn = turn
	return out
}

// DiscardIfScorched unsets the buffer of a scorched unit and returns what was
// queued. Nothing queued before the outcome may rebuild the unit.
func (t *Territory) DiscardIfScorched() *PendingEffects {
	if t.Status != StatusScorched || t.Pending == nil {
		return nil
	}
	dropped := t.Pending
	t.Pending = nil
	return dropped
}

func (t Territory) Owned() bool {
	return t.OwnerID != ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
