package inmemory

import "sync"

type Snapshot struct {
	ActivityTotal    uint64            `json:"activity_total"`
	ActivitySuccess  uint64            `json:"activity_success"`
	ActivityRejected uint64            `json:"activity_rejected"`
	ActivityConflict uint64            `json:"activity_conflict"`
	ActivityFailure  uint64            `json:"activity_failure"`
	ByActivity       map[string]uint64 `json:"by_activity"`
	ByRejection      map[string]uint64 `json:"by_rejection"`

	TurnSweeps        uint64 `json:"turn_sweeps"`
	TurnChanged       uint64 `json:"turn_entities_changed"`
	TurnSkipped       uint64 `json:"turn_entities_skipped"`
	TurnFailed        uint64 `json:"turn_entities_failed"`
	TurnPartialSweeps uint64 `json:"turn_partial_sweeps"`
}

type Recorder struct {
	mu          sync.Mutex
	success     uint64
	rejected    uint64
	conflict    uint64
	failure     uint64
	byActivity  map[string]uint64
	byRejection map[string]uint64

	sweeps   uint64
	changed  uint64
	skipped  uint64
	failed   uint64
	partials uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byActivity:  map[string]uint64{},
		byRejection: map[string]uint64{},
	}
}

func (r *Recorder) RecordActivity(activityKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.byActivity[activityKey]++
}

func (r *Recorder) RecordRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
	r.byRejection[reason]++
}

func (r *Recorder) RecordConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflict++
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
}

func (r *Recorder) RecordTurn(changed, skipped, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps++
	r.changed += uint64(changed)
	r.skipped += uint64(skipped)
	r.failed += uint64(failed)
	if failed > 0 {
		r.partials++
	}
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		ActivitySuccess:   r.success,
		ActivityRejected:  r.rejected,
		ActivityConflict:  r.conflict,
		ActivityFailure:   r.failure,
		ActivityTotal:     r.success + r.rejected + r.conflict + r.failure,
		ByActivity:        make(map[string]uint64, len(r.byActivity)),
		ByRejection:       make(map[string]uint64, len(r.byRejection)),
		TurnSweeps:        r.sweeps,
		TurnChanged:       r.changed,
		TurnSkipped:       r.skipped,
		TurnFailed:        r.failed,
		TurnPartialSweeps: r.partials,
	}
	for k, v := range r.byActivity {
		out.ByActivity[k] = v
	}
	for k, v := range r.byRejection {
		out.ByRejection[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
