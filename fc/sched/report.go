package sched

import (
	"fmt"
	"sort"
)

// LineWriter receives the human-readable report lines. hal.Logger satisfies
// it; the format is diagnostic output, not a machine protocol.
type LineWriter interface {
	WriteLineString(s string)
}

// Reporter is the performance-report action: when the externally owned debug
// selector is active it emits a ranked rate/jitter/duration summary over the
// whole task table plus an aggregate load estimate, then clears every task's
// measurement window.
type Reporter struct {
	sched  *Scheduler
	out    LineWriter
	active func() bool
	diags  []func(LineWriter)
}

// NewReporter creates a reporter over s. active is read on every run; when it
// returns false the reporter is a no-op that reports no work done.
func NewReporter(s *Scheduler, out LineWriter, active func() bool) *Reporter {
	return &Reporter{sched: s, out: out, active: active}
}

// AddDiag registers a collaborator diagnostic hook (storage, channel). Hooks
// run after the task summary, before the stats windows are cleared.
func (r *Reporter) AddDiag(f func(LineWriter)) {
	r.diags = append(r.diags, f)
}

// Run implements Action.
func (r *Reporter) Run() bool {
	if r.active != nil && !r.active() {
		return false
	}

	tasks := r.sched.Tasks()
	order := make([]int, len(tasks))
	for i := range order {
		order[i] = i
	}
	// Ascending achieved rate; tasks that never ran sort last, in table order.
	sort.SliceStable(order, func(a, b int) bool {
		ra, oka := achievedRate(tasks[order[a]])
		rb, okb := achievedRate(tasks[order[b]])
		if oka != okb {
			return oka
		}
		return ra < rb
	})

	var load float64
	for _, idx := range order {
		t := tasks[idx]
		rate, ok := achievedRate(t)
		if !ok {
			r.out.WriteLineString(fmt.Sprintf("%-10s idle", t.Name()))
			continue
		}
		d := t.Delay()
		u := t.Duration()
		avgDurMS := float64(u.Average()) / 1000
		r.out.WriteLineString(fmt.Sprintf(
			"%-10s work=%-5d rate=%6.1fhz delay=%.3f/%.3f/%.3fms dur=%.3f/%.3f/%.3fms",
			t.Name(), t.WorkCount(), rate,
			ms(d.Min()), ms(d.Average()), ms(d.Max()),
			ms(u.Min()), ms(u.Average()), ms(u.Max()),
		))
		// Single-threaded model: task durations sum linearly, so average
		// duration times rate is the task's share of one sweep-second.
		load += avgDurMS * rate / 10
	}
	r.out.WriteLineString(fmt.Sprintf("load %.1f%%", load))

	for _, diag := range r.diags {
		diag(r.out)
	}

	// Fresh window; without this the next report would fold in this one's
	// samples and the averages would stop being windowed.
	r.sched.ResetStats()
	return true
}

// achievedRate is events per second over the measurement window. ok is false
// for a task with no recorded runs (idle).
func achievedRate(t *Task) (float64, bool) {
	d := t.Delay()
	if t.RunCount() == 0 || d.Sum() == 0 {
		return 0, false
	}
	return float64(t.RunCount()) * 1e6 / float64(d.Sum()), true
}

func ms(us uint64) float64 { return float64(us) / 1000 }
