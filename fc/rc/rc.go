// Package rc decodes receiver input: pulse-width normalization, arming
// switch handling, and the iBUS serial frame format.
package rc

import "kestrel/hal"

const (
	PulseMin = 1000
	PulseMid = 1500
	PulseMax = 2000

	// Deadband around neutral, in µs of pulse width.
	Deadband = 20

	// Channel assignment, AETR plus switches.
	ChanRoll     = 0
	ChanPitch    = 1
	ChanThrottle = 2
	ChanYaw      = 3
	ChanArm      = 4

	// Pulse above this on the arm channel means armed.
	armThreshold = 1700

	// Consecutive missed frames before failsafe kicks in.
	failsafeMisses = 25
)

// Sticks is the decoded pilot input. Roll/Pitch/Yaw are in [-1, 1],
// Throttle in [0, 1].
type Sticks struct {
	Roll     float32
	Pitch    float32
	Yaw      float32
	Throttle float32
	Armed    bool
}

// Normalize maps a centered channel pulse to [-1, 1] with a deadband.
func Normalize(pulse uint16) float32 {
	d := int32(pulse) - PulseMid
	switch {
	case d > Deadband:
		d -= Deadband
	case d < -Deadband:
		d += Deadband
	default:
		return 0
	}
	v := float32(d) / float32(PulseMax-PulseMid-Deadband)
	return clamp(v, -1, 1)
}

// NormalizeThrottle maps a throttle pulse to [0, 1].
func NormalizeThrottle(pulse uint16) float32 {
	v := float32(int32(pulse)-PulseMin) / float32(PulseMax-PulseMin)
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// State tracks the latest decoded frame and the failsafe miss counter.
type State struct {
	sticks   Sticks
	misses   int
	failsafe bool
}

// Apply decodes a fresh receiver frame.
func (s *State) Apply(frame [hal.NumRCChannels]uint16) {
	s.misses = 0
	s.failsafe = false
	s.sticks = Sticks{
		Roll:     Normalize(frame[ChanRoll]),
		Pitch:    Normalize(frame[ChanPitch]),
		Yaw:      Normalize(frame[ChanYaw]),
		Throttle: NormalizeThrottle(frame[ChanThrottle]),
		Armed:    frame[ChanArm] >= armThreshold,
	}
}

// MissFrame records one poll with no fresh frame. It reports whether the
// failsafe threshold was crossed on this call.
func (s *State) MissFrame() bool {
	if s.failsafe {
		return false
	}
	s.misses++
	if s.misses < failsafeMisses {
		return false
	}
	// Link lost: cut throttle and disarm until frames resume.
	s.failsafe = true
	s.sticks = Sticks{}
	return true
}

// Failsafe reports whether the link-lost state is active.
func (s *State) Failsafe() bool { return s.failsafe }

func (s *State) Sticks() Sticks { return s.sticks }
