package sched

import (
	"strings"
	"testing"
)

type lineLog struct {
	lines []string
}

func (l *lineLog) WriteLineString(s string) { l.lines = append(l.lines, s) }

func TestReporterInactive(t *testing.T) {
	c := &testClock{}
	task := NewTask("probe", 100, ActionFunc(func() bool { return true }))
	s := New(c, task)
	out := &lineLog{}
	r := NewReporter(s, out, func() bool { return false })

	c.advance(100)
	s.Sweep()

	if worked := r.Run(); worked {
		t.Fatalf("Run() with inactive selector = true, want false")
	}
	if len(out.lines) != 0 {
		t.Fatalf("inactive reporter emitted %d lines, want 0", len(out.lines))
	}
	if got := task.RunCount(); got != 1 {
		t.Fatalf("inactive reporter cleared stats: RunCount() = %d, want 1", got)
	}
}

func TestReporterRankingAndReset(t *testing.T) {
	c := &testClock{}
	medium := NewTask("medium", 1000, ActionFunc(func() bool { return true }))
	fast := NewTask("fast", 100, ActionFunc(func() bool { return true }))
	never := NewTask("osd", 1_000_000, ActionFunc(func() bool { return true }))
	s := New(c, fast, medium, never)
	out := &lineLog{}
	r := NewReporter(s, out, func() bool { return true })

	for i := 0; i < 100; i++ {
		c.advance(100)
		s.Sweep()
	}

	if worked := r.Run(); !worked {
		t.Fatalf("Run() = false, want true")
	}

	// Ascending achieved rate, idle tasks last, then the load line.
	if len(out.lines) != 4 {
		t.Fatalf("emitted %d lines, want 4: %q", len(out.lines), out.lines)
	}
	if !strings.HasPrefix(out.lines[0], "medium") {
		t.Fatalf("lines[0] = %q, want medium (lowest rate) first", out.lines[0])
	}
	if !strings.Contains(out.lines[0], "rate=1000.0hz") {
		t.Fatalf("lines[0] = %q, want 1000.0hz", out.lines[0])
	}
	if !strings.HasPrefix(out.lines[1], "fast") {
		t.Fatalf("lines[1] = %q, want fast second", out.lines[1])
	}
	if !strings.Contains(out.lines[1], "rate=10000.0hz") {
		t.Fatalf("lines[1] = %q, want 10000.0hz", out.lines[1])
	}
	if !strings.HasPrefix(out.lines[2], "osd") || !strings.Contains(out.lines[2], "idle") {
		t.Fatalf("lines[2] = %q, want osd idle line", out.lines[2])
	}
	if !strings.HasPrefix(out.lines[3], "load ") {
		t.Fatalf("lines[3] = %q, want load line", out.lines[3])
	}

	// The report must start a fresh measurement window.
	for _, task := range s.Tasks() {
		if got := task.RunCount(); got != 0 {
			t.Fatalf("%s RunCount() after report = %d, want 0", task.Name(), got)
		}
	}
}

func TestReporterLoadEstimate(t *testing.T) {
	c := &testClock{}
	task := NewTask("ctrl", 10_000, ActionFunc(func() bool {
		c.advance(1000) // 1ms of work per run
		return true
	}))
	s := New(c, task)
	out := &lineLog{}
	r := NewReporter(s, out, func() bool { return true })

	// 100Hz achieved rate at 1ms average duration: 10% of one sweep-second.
	for i := 0; i < 10; i++ {
		if i == 0 {
			c.advance(10_000)
		} else {
			c.advance(9_000)
		}
		task.Process(c)
	}

	r.Run()
	last := out.lines[len(out.lines)-1]
	if last != "load 10.0%" {
		t.Fatalf("load line = %q, want %q", last, "load 10.0%")
	}
}

func TestReporterIdleWindowDoesNotCrash(t *testing.T) {
	c := &testClock{}
	task := NewTask("probe", 100, ActionFunc(func() bool { return true }))
	s := New(c, task)
	out := &lineLog{}
	r := NewReporter(s, out, func() bool { return true })

	s.ResetStats()
	r.Run()

	if len(out.lines) != 2 {
		t.Fatalf("emitted %d lines, want idle + load: %q", len(out.lines), out.lines)
	}
	if !strings.Contains(out.lines[0], "idle") {
		t.Fatalf("lines[0] = %q, want idle line", out.lines[0])
	}
}

func TestReporterDiagHooks(t *testing.T) {
	c := &testClock{}
	s := New(c, NewTask("probe", 100, ActionFunc(func() bool { return true })))
	out := &lineLog{}
	r := NewReporter(s, out, nil)
	r.AddDiag(func(w LineWriter) { w.WriteLineString("blackbox: 0 records") })

	r.Run()
	last := out.lines[len(out.lines)-1]
	if last != "blackbox: 0 records" {
		t.Fatalf("last line = %q, want collaborator diag after summary", last)
	}
}
