// Package session holds the ephemeral workout checklist. A session exists
// only in memory between load and finish; nothing here is persisted except
// the history rows written on finish.
package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ekhagen/ettpass/internal/store"
)

// timestamp layout for history rows, matching the ledger's display format.
const dateLayout = "2006-01-02 15:04:05"

// Placeholder snapshotted when a plan item's station no longer resolves.
const missingStation = "(missing station)"

// Engine drives one checklist session over a loaded plan. It reads the
// repository's stations and plans but only ever mutates history (on finish).
type Engine struct {
	repo *store.Repository

	planID    string
	done      map[int]bool
	startedAt time.Time // zero = never started

	now func() time.Time
}

// Summary reports what Finish wrote.
type Summary struct {
	PlanName string
	Rows     int
	Minutes  *int // nil if the session was never started
}

func New(repo *store.Repository) *Engine {
	return &Engine{
		repo: repo,
		done: map[int]bool{},
		now:  time.Now,
	}
}

// Load starts a session for planID. It is a no-op returning false unless the
// plan exists and has at least one item. Loading while a session is already
// active simply resets it.
func (e *Engine) Load(planID string) bool {
	p := e.repo.PlanByID(planID)
	if p == nil || len(p.Items) == 0 {
		return false
	}
	e.planID = planID
	e.done = map[int]bool{}
	e.startedAt = e.now()
	return true
}

// Loaded reports whether a session is active.
func (e *Engine) Loaded() bool {
	return e.planID != ""
}

// PlanID returns the loaded plan's id, or "" when idle.
func (e *Engine) PlanID() string {
	return e.planID
}

// Toggle flips the completion flag for the item at idx. Out-of-range indexes
// are ignored.
func (e *Engine) Toggle(idx int) {
	p := e.repo.PlanByID(e.planID)
	if p == nil || idx < 0 || idx >= len(p.Items) {
		return
	}
	e.done[idx] = !e.done[idx]
}

// Done reports the completion flag for the item at idx.
func (e *Engine) Done(idx int) bool {
	return e.done[idx]
}

// Completed returns how many items are currently checked off.
func (e *Engine) Completed() int {
	n := 0
	for _, d := range e.done {
		if d {
			n++
		}
	}
	return n
}

// Elapsed returns time since the session started, zero when never started.
func (e *Engine) Elapsed() time.Duration {
	if e.startedAt.IsZero() {
		return 0
	}
	return e.now().Sub(e.startedAt)
}

// Reset clears all completion flags and restarts the clock, keeping the plan.
func (e *Engine) Reset() {
	e.done = map[int]bool{}
	e.startedAt = e.now()
}

// Finish writes one history row per plan item — completion flags do not gate
// recording — all sharing a single timestamp, at the head of the ledger. The
// checklist is cleared but the plan selection is retained so the same plan
// can be restarted immediately. Finishing a plan that was emptied after load
// writes zero rows and is safe.
func (e *Engine) Finish() (*Summary, error) {
	p := e.repo.PlanByID(e.planID)
	if !e.Loaded() || p == nil {
		return nil, fmt.Errorf("no workout loaded")
	}

	now := e.now()
	date := now.Format(dateLayout)
	ts := now.UnixMilli()

	rows := make([]store.HistoryRow, 0, len(p.Items))
	for _, it := range p.Items {
		name := missingStation
		if st := e.repo.StationByID(it.StationID); st != nil {
			name = st.Name
		}
		rows = append(rows, store.HistoryRow{
			TS:          ts,
			Date:        date,
			PlanName:    p.Name,
			StationName: name,
			Weight:      formatWeight(it.Weight),
			Sets:        formatInt(it.Sets),
			Reps:        formatInt(it.Reps),
		})
	}

	if err := e.repo.AppendHistory(rows); err != nil {
		return nil, err
	}

	sum := &Summary{PlanName: p.Name, Rows: len(rows)}
	if !e.startedAt.IsZero() {
		mins := int(now.Sub(e.startedAt).Round(time.Minute) / time.Minute)
		sum.Minutes = &mins
	}

	e.done = map[int]bool{}
	// planID retained on purpose
	return sum, nil
}

func formatWeight(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
