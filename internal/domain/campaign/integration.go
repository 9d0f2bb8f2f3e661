package campaign

import "time"

type IntegrationStage string

const (
	StageWild       IntegrationStage = "wild"
	StageOutpost    IntegrationStage = "outpost"
	StageDeveloping IntegrationStage = "developing"
	StageSettled    IntegrationStage = "settled"
	StageIntegrated IntegrationStage = "integrated"
)

func StageFor(progress int) IntegrationStage {
	switch {
	case progress <= 0:
		return StageWild
	case progress <= 2:
		return StageOutpost
	case progress <= 4:
		return StageDeveloping
	case progress == 5:
		return StageSettled
	default:
		return StageIntegrated
	}
}

type IntegrationChange struct {
	At      time.Time  `json:"at"`
	Outcome OutcomeKey `json:"outcome"`
	Tier    Tier       `json:"tier"`
	Before  int        `json:"before"`
	After   int        `json:"after"`
}

type Integration struct {
	Progress int                 `json:"progress"`
	History  []IntegrationChange `json:"history"`
}

func (it Integration) Stage() IntegrationStage {
	return StageFor(it.Progress)
}

// IntegrationStamp identifies what caused a progress change.
type IntegrationStamp struct {
	At      time.Time
	Outcome OutcomeKey
	Tier    Tier
}

// Add moves progress forward. The unsigned step makes regression impossible here.
func (it *Integration) Add(steps uint, stamp IntegrationStamp) bool {
	next := it.Progress + int(steps)
	if next > MaxProgress {
		next = MaxProgress
	}
	return it.set(next, stamp)
}

func (it *Integration) RaiseAtLeast(floor int, stamp IntegrationStamp) bool {
	if floor > MaxProgress {
		floor = MaxProgress
	}
	if floor <= it.Progress {
		return false
	}
	return it.set(floor, stamp)
}

// Reset is reserved for salt-the-earth; it is the only path that lowers progress.
func (it *Integration) Reset(stamp IntegrationStamp) bool {
	return it.set(0, stamp)
}

func (it *Integration) set(next int, stamp IntegrationStamp) bool {
	if next < 0 {
		next = 0
	}
	if next == it.Progress {
		return false
	}
	it.History = append(it.History, IntegrationChange{
		At:      stamp.At,
		Outcome: stamp.Outcome,
		Tier:    stamp.Tier,
		Before:  it.Progress,
		After:   next,
	})
	if over := len(it.History) - IntegrationHistoryCap; over > 0 {
		it.History = append([]IntegrationChange(nil), it.History[over:]...)
	}
	it.Progress = next
	return true
}

type IntegrationKind string

const (
	IntegrationNone         IntegrationKind = ""
	IntegrationAdd          IntegrationKind = "add"
	IntegrationRaiseAtLeast IntegrationKind = "raise_at_least"
	IntegrationReset        IntegrationKind = "reset"
)

type IntegrationDirective struct {
	Kind   IntegrationKind `json:"kind,omitempty"`
	Amount uint            `json:"amount,omitempty"`
}

// Apply interprets the directive against the track and reports before/after progress.
func (it *Integration) Apply(d IntegrationDirective, stamp IntegrationStamp) (int, int) {
	before := it.Progress
	switch d.Kind {
	case IntegrationAdd:
		it.Add(d.Amount, stamp)
	case IntegrationRaiseAtLeast:
		it.RaiseAtLeast(int(d.Amount), stamp)
	case IntegrationReset:
		it.Reset(stamp)
	}
	return before, it.Progress
}

type settlementProfile struct {
	populationTier int
	size           string
}

var stageSettlement = map[IntegrationStage]settlementProfile{
	StageWild:       {populationTier: 0, size: "none"},
	StageOutpost:    {populationTier: 1, size: "camp"},
	StageDeveloping: {populationTier: 2, size: "village"},
	StageSettled:    {populationTier: 3, size: "town"},
	StageIntegrated: {populationTier: 4, size: "city"},
}

// syncSettlement updates population and size after a stage change, but only on
// wilderness units; developed units keep their hand-authored values.
func (t *Territory) syncSettlement(before, after int) {
	if !t.Wilderness || StageFor(before) == StageFor(after) {
		return
	}
	profile := stageSettlement[StageFor(after)]
	t.PopulationTier = profile.populationTier
	t.SettlementSize = profile.size
}
