// Package sched is the execution core of the flight controller: a
// single-threaded, non-preemptive, rate-based sweep over a fixed-priority
// task table, with a mid-sweep disruption protocol that resynchronizes all
// timing baselines after a deliberately slow task execution.
package sched

// Clock is the monotonic microsecond timebase the scheduler runs against.
type Clock interface {
	Micros() uint64
}

// Scheduler owns the priority-ordered task table and the disruption signal.
//
// Everything here is touched from a single execution context; there is no
// concurrent writer and no locking.
type Scheduler struct {
	clock Clock
	tasks []*Task

	disrupted bool
	resyncAt  uint64 // timestamp of the last resynchronization
}

// New creates a scheduler over the given table. Table order is priority
// order: earlier tasks always run first within a sweep.
func New(c Clock, tasks ...*Task) *Scheduler {
	return &Scheduler{clock: c, tasks: tasks}
}

// Tasks returns the table in priority order. The slice is shared, not copied;
// callers must not reorder it.
func (s *Scheduler) Tasks() []*Task { return s.tasks }

// Disruption is a scoped marker for a stretch of unpredictably slow work
// inside a task action. Acquiring it raises the disruption signal.
type Disruption struct{}

// BeginDisruption raises the disruption signal. The next sweep check abandons
// the current pass and resynchronizes every task's baseline.
func (s *Scheduler) BeginDisruption() Disruption {
	s.disrupted = true
	return Disruption{}
}

// End releases the guard. It deliberately does not clear the signal: clearing
// belongs to the sweep, after it has reset every task, so that the time spent
// inside the guarded region can never be mistaken for scheduling delay.
func (Disruption) End() {}

// Disrupted reports whether a disruption is pending.
func (s *Scheduler) Disrupted() bool { return s.disrupted }

// LastResync returns the timestamp of the most recent resynchronization.
func (s *Scheduler) LastResync() uint64 { return s.resyncAt }

// Sweep runs one pass over the table in priority order.
//
// The disruption signal is checked before each task, not only between full
// passes: that bounds the latency from "signal raised" to "baselines reset"
// to one task's execution time. On a raised signal the remainder of the pass
// is abandoned, every task is reset to a fresh timestamp, and a new pass
// starts at priority 0 within the same call.
func (s *Scheduler) Sweep() {
	// A signal raised by the final task of the previous pass is still
	// pending here; consume it even when the table is empty.
	if s.disrupted {
		s.resync()
	}
	for i := 0; i < len(s.tasks); i++ {
		if s.disrupted {
			s.resync()
			i = -1
			continue
		}
		t := s.tasks[i]
		if !t.Enabled() {
			continue
		}
		t.Process(s.clock)
	}
}

func (s *Scheduler) resync() {
	now := s.clock.Micros()
	for _, t := range s.tasks {
		t.Reset(now)
	}
	s.disrupted = false
	s.resyncAt = now
}

// ResetStats starts a fresh measurement window on every task.
func (s *Scheduler) ResetStats() {
	for _, t := range s.tasks {
		t.ResetStats()
	}
}
