package sched

import "testing"

type testClock struct {
	now uint64
}

func (c *testClock) Micros() uint64 { return c.now }

func (c *testClock) advance(us uint64) { c.now += us }

func TestTaskRateLimit(t *testing.T) {
	c := &testClock{}
	runs := 0
	task := NewTask("probe", 1000, ActionFunc(func() bool {
		runs++
		return true
	}))

	// 100µs steps for 10ms: the 1kHz task must run 10 times, once per
	// elapsed millisecond, never twice inside one period.
	for i := 0; i < 100; i++ {
		c.advance(100)
		task.Process(c)
	}

	if runs != 10 {
		t.Fatalf("runs = %d, want 10", runs)
	}
	if got := task.RunCount(); got != 10 {
		t.Fatalf("RunCount() = %d, want 10", got)
	}
	if got := task.WorkCount(); got != 10 {
		t.Fatalf("WorkCount() = %d, want 10", got)
	}
}

func TestTaskNotDueLeavesStateUntouched(t *testing.T) {
	c := &testClock{now: 5000}
	task := NewTask("probe", 1000, ActionFunc(func() bool { return true }))
	task.Reset(c.now)

	c.advance(400)
	if worked := task.Process(c); worked {
		t.Fatalf("Process() before period elapsed = true, want false")
	}
	if got := task.RunCount(); got != 0 {
		t.Fatalf("RunCount() = %d, want 0", got)
	}
	if got := task.Delay().Count(); got != 0 {
		t.Fatalf("Delay().Count() = %d, want 0", got)
	}
}

func TestTaskWorkCountTracksActionResult(t *testing.T) {
	c := &testClock{}
	n := 0
	task := NewTask("probe", 100, ActionFunc(func() bool {
		n++
		return n%2 == 0
	}))

	for i := 0; i < 6; i++ {
		c.advance(100)
		task.Process(c)
	}

	if got := task.RunCount(); got != 6 {
		t.Fatalf("RunCount() = %d, want 6", got)
	}
	if got := task.WorkCount(); got != 3 {
		t.Fatalf("WorkCount() = %d, want 3", got)
	}
	if task.WorkCount() > task.RunCount() {
		t.Fatalf("WorkCount() %d > RunCount() %d", task.WorkCount(), task.RunCount())
	}
}

func TestTaskDurationStats(t *testing.T) {
	c := &testClock{}
	costs := []uint64{120, 40, 300}
	i := 0
	task := NewTask("probe", 1000, ActionFunc(func() bool {
		c.advance(costs[i])
		i++
		return true
	}))

	for range costs {
		c.advance(1000)
		task.Process(c)
	}

	d := task.Duration()
	if got := d.Count(); got != 3 {
		t.Fatalf("Duration().Count() = %d, want 3", got)
	}
	if got := d.Sum(); got != 460 {
		t.Fatalf("Duration().Sum() = %d, want 460", got)
	}
	if got := d.Min(); got != 40 {
		t.Fatalf("Duration().Min() = %d, want 40", got)
	}
	if got := d.Max(); got != 300 {
		t.Fatalf("Duration().Max() = %d, want 300", got)
	}
}

func TestTaskBestEffortCadence(t *testing.T) {
	c := &testClock{}
	task := NewTask("probe", 1000, ActionFunc(func() bool { return true }))

	// A run 2.5 periods late restarts the period from the actual run time;
	// there is no catch-up burst.
	c.advance(2500)
	if !task.Process(c) {
		t.Fatalf("Process() after 2500µs = false, want true")
	}
	c.advance(500)
	if task.Process(c) {
		t.Fatalf("Process() 500µs after a late run = true, want false (no catch-up)")
	}
	c.advance(500)
	if !task.Process(c) {
		t.Fatalf("Process() one full period after the late run = false, want true")
	}
}

func TestTaskAlwaysRun(t *testing.T) {
	c := &testClock{}
	runs := 0
	task := NewTask("probe", 1_000_000, ActionFunc(func() bool {
		runs++
		return true
	}))
	task.SetAlwaysRun(true)

	for i := 0; i < 5; i++ {
		c.advance(10)
		task.Process(c)
	}
	if runs != 5 {
		t.Fatalf("runs = %d, want 5", runs)
	}
}

func TestTaskSetIntervalClamp(t *testing.T) {
	task := NewTask("probe", 1000, ActionFunc(func() bool { return true }))

	task.SetInterval(5_000_000, 1_000_000)
	if got := task.Interval(); got != 1_000_000 {
		t.Fatalf("Interval() = %d, want clamp to 1000000", got)
	}

	task.SetInterval(20_000, 1_000_000)
	if got := task.Interval(); got != 20_000 {
		t.Fatalf("Interval() = %d, want 20000", got)
	}
}

func TestTaskResetKeepsStats(t *testing.T) {
	c := &testClock{}
	task := NewTask("probe", 100, ActionFunc(func() bool { return true }))

	c.advance(100)
	task.Process(c)

	task.Reset(99_999)
	if got := task.RunCount(); got != 1 {
		t.Fatalf("RunCount() after Reset = %d, want 1", got)
	}
	if got := task.Delay().Count(); got != 1 {
		t.Fatalf("Delay().Count() after Reset = %d, want 1", got)
	}
}

func TestTaskResetStats(t *testing.T) {
	c := &testClock{}
	task := NewTask("probe", 100, ActionFunc(func() bool { return true }))

	c.advance(100)
	task.Process(c)
	task.ResetStats()

	if got := task.RunCount(); got != 0 {
		t.Fatalf("RunCount() = %d, want 0", got)
	}
	if got := task.WorkCount(); got != 0 {
		t.Fatalf("WorkCount() = %d, want 0", got)
	}
	if got := task.Delay().Count(); got != 0 {
		t.Fatalf("Delay().Count() = %d, want 0", got)
	}
	if got := task.Duration().Count(); got != 0 {
		t.Fatalf("Duration().Count() = %d, want 0", got)
	}
}
