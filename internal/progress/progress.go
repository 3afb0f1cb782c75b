// Package progress accumulates per-unit translation outcomes and reports
// them to a caller-supplied sink. It is an in-memory counter with an
// observation hook: no persistence and no failure modes of its own.
package progress

import (
	"time"

	"github.com/oukeidos/doctran/internal/llm"
	"github.com/oukeidos/doctran/internal/logger"
)

// Callback receives a progress update after each unit and at job completion.
// Implementations range from a CLI progress bar to a WebSocket broadcaster.
type Callback func(current, total, tokens int, cost, elapsed float64, message string)

// Snapshot is the tracker's current state, safe to hand to display code.
type Snapshot struct {
	Completed  int
	Total      int
	Failed     []int
	TokenUsage int
	Cost       float64
	Elapsed    float64
}

// Percent returns completion as a 0-100 value.
func (s Snapshot) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

// Tracker accumulates outcomes for one translate-document call. The engine
// processes units sequentially, so the tracker is intentionally
// unsynchronized; each orchestration owns its tracker exclusively.
type Tracker struct {
	total     int
	completed int
	failed    []int
	tokens    int
	cost      float64
	start     time.Time
	onUpdate  Callback
}

// NewTracker starts tracking total units. onUpdate may be nil.
func NewTracker(total int, onUpdate Callback) *Tracker {
	return &Tracker{
		total:    total,
		start:    time.Now(),
		onUpdate: onUpdate,
	}
}

// Seed pre-loads counters from a resumed checkpoint so percentages and cost
// totals include prior work.
func (t *Tracker) Seed(completed, tokens int, cost float64) {
	t.completed = completed
	t.tokens = tokens
	t.cost = cost
}

// Update records the outcome of one unit. unitIndex is 1-based. On error the
// index joins the failed list and the failure is logged; on success the
// response's tokens and cost are accumulated. The callback fires either way.
func (t *Tracker) Update(unitIndex int, resp *llm.Response, err error) {
	if err != nil {
		t.failed = append(t.failed, unitIndex)
		logger.Error("Unit translation failed", "unit", unitIndex, "error", err)
	} else {
		t.completed++
		if resp != nil {
			t.tokens += resp.TokensUsed
			t.cost += resp.Cost
		}
	}
	t.notify("")
}

// Finish emits a final callback with a completion message.
func (t *Tracker) Finish(message string) {
	t.notify(message)
}

// Elapsed returns wall-clock seconds since tracking started.
func (t *Tracker) Elapsed() float64 {
	return time.Since(t.start).Seconds()
}

// Snapshot returns the current accumulated state. The failed slice is copied
// so callers cannot perturb the tracker.
func (t *Tracker) Snapshot() Snapshot {
	failed := make([]int, len(t.failed))
	copy(failed, t.failed)
	return Snapshot{
		Completed:  t.completed,
		Total:      t.total,
		Failed:     failed,
		TokenUsage: t.tokens,
		Cost:       t.cost,
		Elapsed:    t.Elapsed(),
	}
}

func (t *Tracker) notify(message string) {
	if t.onUpdate == nil {
		return
	}
	t.onUpdate(t.completed, t.total, t.tokens, t.cost, t.Elapsed(), message)
}
