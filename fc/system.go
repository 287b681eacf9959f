// Package fc wires the flight tasks onto the scheduler core and owns the
// outer loop step.
package fc

import (
	"fmt"
	"math"

	"kestrel/fc/blackbox"
	"kestrel/fc/control"
	"kestrel/fc/imu"
	"kestrel/fc/rc"
	"kestrel/fc/sched"
	"kestrel/fc/telemetry"
	"kestrel/hal"
)

// syncEvery is the record granularity for flushing the flight log.
const syncEvery = 16

// System is the assembled firmware: HAL, collaborators, and the scheduler
// with its priority-ordered task table.
type System struct {
	h   hal.HAL
	cfg *Config

	sched    *sched.Scheduler
	reporter *sched.Reporter

	filter  *imu.Filter
	rcState *rc.State
	ctrl    *control.Controller
	link    *telemetry.Link
	bb      *blackbox.Writer
	cmd     *telemetry.CommandReader

	telemetryTask *sched.Task
	blackboxTask  *sched.Task

	// Latest sensor/control state shared between task actions. Single
	// execution context; no locking.
	gyro       [3]float32
	lastIMU    uint64
	lastCtrl   uint64
	motors     [4]float32
	pressurePa float32
	groundPa   float32
	altitudeM  float32
	bbWrites   uint32
	ledOn      bool

	failed     bool
	failReason string
	lastFatal  uint64
	fatalEver  bool
}

// New assembles the system. Sensor init failures do not return an error:
// they latch the fatal-stall state, and Step reports it loudly instead of
// sweeping.
func New(h hal.HAL, cfg *Config) *System {
	s := &System{
		h:       h,
		cfg:     cfg,
		filter:  imu.NewFilter(),
		rcState: &rc.State{},
		ctrl:    control.New(),
		link:    telemetry.NewLink(h.Telemetry()),
		bb:      blackbox.NewWriter(h.Storage()),
	}
	s.cmd = telemetry.NewCommandReader(h.Telemetry(), s, h.Logger())

	if _, err := h.IMU().ReadIMU(); err != nil {
		s.fail(fmt.Sprintf("imu init: %v", err))
	}

	s.sched = sched.New(h.Clock(), s.newTaskTable()...)
	s.reporter = sched.NewReporter(s.sched, h.Logger(), func() bool {
		return s.cfg.Debug == DebugPerf
	})
	s.reporter.AddDiag(func(w sched.LineWriter) { w.WriteLineString(s.bb.Diag()) })
	s.reporter.AddDiag(func(w sched.LineWriter) { w.WriteLineString(s.link.Diag()) })
	return s
}

// newTaskTable builds the sweep table. Slice order is priority order: the
// IMU and control loop come first, diagnostics last.
func (s *System) newTaskTable() []*sched.Task {
	s.telemetryTask = sched.NewTask("telem", s.cfg.TelemetryIntervalMicros, sched.ActionFunc(s.runTelemetry))
	s.blackboxTask = sched.NewTask("bbox", s.cfg.BlackboxIntervalMicros, sched.ActionFunc(s.runBlackbox))

	return []*sched.Task{
		sched.NewTask("gyro", gyroInterval, sched.ActionFunc(s.runIMU)),
		sched.NewTask("ctrl", controlInterval, sched.ActionFunc(s.runControl)),
		sched.NewTask("rc", rcInterval, sched.ActionFunc(s.runRC)),
		sched.NewTask("baro", baroInterval, sched.ActionFunc(s.runBaro)),
		sched.NewTask("mag", magInterval, sched.ActionFunc(s.runMag)),
		s.telemetryTask,
		sched.NewTask("cmd", commandInterval, sched.ActionFunc(s.runCommands)),
		s.blackboxTask,
		sched.NewTask("osd", statusInterval, sched.ActionFunc(s.runStatus)),
		sched.NewTask("led", ledInterval, sched.ActionFunc(s.runLED)),
		sched.NewTask("perf", reportInterval, sched.ActionFunc(s.runReport)),
	}
}

// runReport emits the performance summary. Dumping formatted lines over the
// serial channel is unpredictably slow, so the dump runs under the
// disruption guard: the next sweep resynchronizes every task baseline
// instead of treating the dump time as scheduling delay.
func (s *System) runReport() bool {
	if s.cfg.Debug != DebugPerf {
		return false
	}
	guard := s.sched.BeginDisruption()
	defer guard.End()
	return s.reporter.Run()
}

// Step is one outer-loop iteration: re-apply the config-owned cadences, then
// sweep, unless the fatal-stall condition is latched.
func (s *System) Step() {
	if s.failed {
		s.fatalTick()
		return
	}
	s.telemetryTask.SetInterval(s.cfg.TelemetryIntervalMicros, maxConfiguredInterval)
	s.blackboxTask.SetInterval(s.cfg.BlackboxIntervalMicros, maxConfiguredInterval)
	s.sched.Sweep()
}

// Failed reports whether the fatal-stall condition is latched.
func (s *System) Failed() bool { return s.failed }

func (s *System) fail(reason string) {
	s.failed = true
	s.failReason = reason
}

// fatalTick replaces sweeping once the system has failed: a diagnostic line
// per second and a distinctive LED toggle, forever.
func (s *System) fatalTick() {
	now := s.h.Clock().Micros()
	if s.fatalEver && now-s.lastFatal < 1_000_000 {
		return
	}
	s.fatalEver = true
	s.lastFatal = now
	s.h.Logger().WriteLineString("FATAL: " + s.failReason + " (scheduling halted)")
	s.ledOn = !s.ledOn
	if s.ledOn {
		s.h.LED().High()
	} else {
		s.h.LED().Low()
	}
}

func (s *System) runIMU() bool {
	sample, err := s.h.IMU().ReadIMU()
	if err != nil {
		return false
	}
	now := s.h.Clock().Micros()
	dt := now - s.lastIMU
	if s.lastIMU == 0 || dt > 50_000 {
		dt = gyroInterval
	}
	s.lastIMU = now
	s.gyro = sample.Gyro
	s.filter.Update(sample, dt)
	return true
}

func (s *System) runControl() bool {
	now := s.h.Clock().Micros()
	dt := now - s.lastCtrl
	if s.lastCtrl == 0 || dt > 20_000 {
		dt = controlInterval
	}
	s.lastCtrl = now

	s.motors = s.ctrl.Update(s.rcState.Sticks(), s.gyro, dt)
	s.h.Motors().Set(s.motors)
	return s.ctrl.Armed()
}

func (s *System) runRC() bool {
	frame, fresh := s.h.RC().Channels()
	if !fresh {
		if s.rcState.MissFrame() {
			s.ctrl.SetArmed(false)
			s.h.Logger().WriteLineString("rc: failsafe, disarmed")
		}
		return false
	}
	s.rcState.Apply(frame)
	s.ctrl.SetArmed(s.rcState.Sticks().Armed)
	return true
}

func (s *System) runBaro() bool {
	p, err := s.h.Baro().ReadPressure()
	if err != nil {
		return false
	}
	s.pressurePa = p
	if s.groundPa == 0 {
		s.groundPa = p
	}
	// Barometric altitude above the power-on reference.
	s.altitudeM = float32(44330 * (1 - math.Pow(float64(p/s.groundPa), 0.1903)))
	return true
}

func (s *System) runMag() bool {
	x, y, z, err := s.h.Mag().ReadField()
	if err != nil {
		return false
	}
	s.filter.UpdateMag(x, y, z)
	return true
}

// runTelemetry frames and sends the downlink snapshot. Status frames are
// small and fixed-size; unlike the perf dump they do not need the
// disruption guard.
func (s *System) runTelemetry() bool {
	att := s.filter.Attitude()
	st := telemetry.Status{
		TimeMicros: uint32(s.h.Clock().Micros()),
		Roll:       int16(att.Roll * 100),
		Pitch:      int16(att.Pitch * 100),
		Yaw:        yawCentideg(att.Yaw),
		PressurePa: uint32(s.pressurePa),
		Armed:      s.ctrl.Armed(),
	}
	for i, m := range s.motors {
		st.Motors[i] = uint16(m * 1000)
	}
	return s.link.SendStatus(st) == nil
}

func (s *System) runCommands() bool {
	return s.cmd.Poll()
}

func (s *System) runBlackbox() bool {
	if !s.ctrl.Armed() {
		return false
	}
	att := s.filter.Attitude()
	r := blackbox.Record{
		TimeMicros: uint32(s.h.Clock().Micros()),
		Roll:       int16(att.Roll * 100),
		Pitch:      int16(att.Pitch * 100),
		Yaw:        yawCentideg(att.Yaw),
		Armed:      true,
	}
	for i, g := range s.gyro {
		r.Gyro[i] = int16(g * 10)
	}
	for i, m := range s.motors {
		r.Motors[i] = uint16(m * 1000)
	}
	if !s.bb.Write(r) {
		return false
	}
	s.bbWrites++
	if s.bbWrites%syncEvery == 0 {
		_ = s.bb.Sync()
	}
	return true
}

func (s *System) runStatus() bool {
	d := s.h.Status()
	if d == nil {
		return false
	}
	att := s.filter.Attitude()

	mode := "DISARMED"
	switch {
	case s.rcState.Failsafe():
		mode = "FAILSAFE"
	case s.ctrl.Armed():
		mode = "ARMED"
	}
	d.WriteLine(0, "KESTREL "+mode)
	d.WriteLine(1, fmt.Sprintf("R%+6.1f P%+6.1f Y%5.1f", att.Roll, att.Pitch, att.Yaw))
	d.WriteLine(2, fmt.Sprintf("alt %+6.1fm thr %3.0f%%", s.altitudeM, s.rcState.Sticks().Throttle*100))
	d.Display()
	return true
}

// runLED is the heartbeat: slow blink disarmed, solid armed, double-rate
// blink in failsafe.
func (s *System) runLED() bool {
	now := s.h.Clock().Micros()
	switch {
	case s.ctrl.Armed():
		s.ledOn = true
	case s.rcState.Failsafe():
		s.ledOn = now/200_000%2 == 0
	default:
		s.ledOn = now/500_000%2 == 0
	}
	if s.ledOn {
		s.h.LED().High()
	} else {
		s.h.LED().Low()
	}
	return true
}

// yawCentideg maps [0, 360) to signed centidegrees in [-18000, 18000).
func yawCentideg(yaw float32) int16 {
	if yaw >= 180 {
		yaw -= 360
	}
	return int16(yaw * 100)
}

// SetDebugPerf implements telemetry.Controls.
func (s *System) SetDebugPerf(on bool) {
	if on {
		s.cfg.Debug = DebugPerf
	} else {
		s.cfg.Debug = DebugOff
	}
}

// SetTelemetryRateHz implements telemetry.Controls.
func (s *System) SetTelemetryRateHz(hz int) bool {
	if hz < 1 || hz > 1000 {
		return false
	}
	s.cfg.TelemetryIntervalMicros = 1_000_000 / uint64(hz)
	return true
}

// SetBlackboxRateHz implements telemetry.Controls. Rates above the storage
// ceiling are rejected rather than clamped so the operator sees the refusal.
func (s *System) SetBlackboxRateHz(hz int) bool {
	if hz < 1 || hz > blackbox.MaxWriteHz {
		return false
	}
	s.cfg.BlackboxIntervalMicros = 1_000_000 / uint64(hz)
	return true
}
