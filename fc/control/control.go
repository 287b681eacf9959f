// Package control is the rate-mode control law: per-axis PID on gyro rates
// plus an X-quad mixer, gated by the arming state.
package control

import "kestrel/fc/rc"

// Stick-full-deflection rate setpoints, degrees per second.
const (
	MaxRollRate  = 400
	MaxPitchRate = 400
	MaxYawRate   = 270
)

// Output scale: PID output in °/s of residual error maps to this fraction of
// throttle authority per 100°/s.
const mixScale = 1.0 / 500

// Motor arms less than this throttle stay at idle even when armed.
const throttleIdle = 0.05

// PID is a single-axis controller. Gains operate on errors in °/s.
type PID struct {
	KP float32
	KI float32
	KD float32

	integ      float32
	integLimit float32
	prevErr    float32
	primed     bool
}

func NewPID(kp, ki, kd, integLimit float32) PID {
	return PID{KP: kp, KI: ki, KD: kd, integLimit: integLimit}
}

// Update advances the controller by dt seconds and returns the correction.
func (p *PID) Update(err, dt float32) float32 {
	p.integ += err * dt * p.KI
	if p.integ > p.integLimit {
		p.integ = p.integLimit
	} else if p.integ < -p.integLimit {
		p.integ = -p.integLimit
	}

	var deriv float32
	if p.primed && dt > 0 {
		deriv = (err - p.prevErr) / dt
	}
	p.prevErr = err
	p.primed = true

	return err*p.KP + p.integ + deriv*p.KD
}

// Reset clears the accumulated state. Called on disarm so stale integrators
// cannot command motors at the next arm.
func (p *PID) Reset() {
	p.integ = 0
	p.prevErr = 0
	p.primed = false
}

// Controller runs the three axis loops and the mixer.
type Controller struct {
	roll  PID
	pitch PID
	yaw   PID
	armed bool
}

func New() *Controller {
	return &Controller{
		roll:  NewPID(0.8, 0.5, 0.01, 100),
		pitch: NewPID(0.8, 0.5, 0.01, 100),
		yaw:   NewPID(1.5, 0.8, 0, 100),
	}
}

// SetArmed gates motor output. Disarming resets all axis controllers.
func (c *Controller) SetArmed(armed bool) {
	if c.armed && !armed {
		c.roll.Reset()
		c.pitch.Reset()
		c.yaw.Reset()
	}
	c.armed = armed
}

func (c *Controller) Armed() bool { return c.armed }

// Update computes one control step from pilot sticks and measured body rates
// (°/s). It returns normalized motor outputs; all zero while disarmed.
func (c *Controller) Update(sticks rc.Sticks, gyro [3]float32, dtMicros uint64) [4]float32 {
	if !c.armed || sticks.Throttle < throttleIdle {
		return [4]float32{}
	}
	dt := float32(dtMicros) * 1e-6

	rollOut := c.roll.Update(sticks.Roll*MaxRollRate-gyro[0], dt) * mixScale
	pitchOut := c.pitch.Update(sticks.Pitch*MaxPitchRate-gyro[1], dt) * mixScale
	yawOut := c.yaw.Update(sticks.Yaw*MaxYawRate-gyro[2], dt) * mixScale

	return Mix(sticks.Throttle, rollOut, pitchOut, yawOut)
}

// Mix maps throttle plus axis corrections onto an X-quad: motor 0 front
// right, 1 rear right, 2 rear left, 3 front left. Positive roll rolls right
// (left motors up), positive pitch noses up (rear motors up), positive yaw
// spins clockwise.
func Mix(throttle, roll, pitch, yaw float32) [4]float32 {
	m := [4]float32{
		throttle - roll + pitch + yaw,
		throttle - roll - pitch - yaw,
		throttle + roll - pitch + yaw,
		throttle + roll + pitch - yaw,
	}
	for i, v := range m {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		m[i] = v
	}
	return m
}
