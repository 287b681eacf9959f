package sched

// Action is one schedulable probe. Run attempts a unit of work and reports
// whether the invocation performed observable work. The result feeds the
// work counter and the perf report only; it never gates scheduling.
type Action interface {
	Run() bool
}

// ActionFunc adapts a closure to the Action interface.
type ActionFunc func() bool

func (f ActionFunc) Run() bool { return f() }

// Task is a rate-limited unit in the scheduler table.
//
// Cadence is best-effort: lastRun is stamped with the time the task actually
// ran, so a late run restarts its period rather than catching up. This keeps
// the delay statistics honest about achieved rather than intended rates.
type Task struct {
	name      string
	action    Action
	interval  uint64 // desired µs between runs
	alwaysRun bool
	enabled   bool

	lastRun   uint64
	runCount  uint32 // invocations since last stats reset
	workCount uint32 // invocations that reported work

	delay    Stats // elapsed time between consecutive runs
	duration Stats // wall time spent inside the action
}

// NewTask creates an enabled task with the given cadence in µs.
func NewTask(name string, interval uint64, action Action) *Task {
	return &Task{
		name:     name,
		action:   action,
		interval: interval,
		enabled:  true,
	}
}

func (t *Task) Name() string { return t.name }

// SetAlwaysRun makes the task run on every sweep regardless of cadence.
func (t *Task) SetAlwaysRun(v bool) { t.alwaysRun = v }

// SetInterval retunes the cadence. A non-zero max clamps the request so a
// misconfigured collaborator cannot starve the task indefinitely.
func (t *Task) SetInterval(interval, max uint64) {
	if max != 0 && interval > max {
		interval = max
	}
	t.interval = interval
}

func (t *Task) Interval() uint64 { return t.interval }

func (t *Task) Enable()  { t.enabled = true }
func (t *Task) Disable() { t.enabled = false }

func (t *Task) Enabled() bool { return t.enabled }

// Process runs the action if the task is due, folding the observed delay and
// the action duration into the stats windows. It reports whether the action
// performed work; a not-yet-due task returns false with no state change.
func (t *Task) Process(c Clock) bool {
	now := c.Micros()
	elapsed := now - t.lastRun
	if elapsed < t.interval && !t.alwaysRun {
		return false
	}

	t.delay.Update(elapsed)
	start := c.Micros()
	worked := t.action.Run()
	t.duration.Update(c.Micros() - start)

	t.runCount++
	if worked {
		t.workCount++
	}
	t.lastRun = now
	return worked
}

// Reset moves the scheduling baseline without touching statistics. The
// scheduler uses it to resynchronize the whole table after a disruption.
func (t *Task) Reset(ts uint64) { t.lastRun = ts }

// ResetStats starts a fresh measurement window.
func (t *Task) ResetStats() {
	t.delay.Reset()
	t.duration.Reset()
	t.runCount = 0
	t.workCount = 0
}

func (t *Task) RunCount() uint32  { return t.runCount }
func (t *Task) WorkCount() uint32 { return t.workCount }

// Delay returns a copy of the inter-run delay window.
func (t *Task) Delay() Stats { return t.delay }

// Duration returns a copy of the action duration window.
func (t *Task) Duration() Stats { return t.duration }
