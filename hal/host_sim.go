//go:build !tinygo

package hal

import (
	"math"
	"sync"
)

const (
	simRollAuthority  = 400 // deg/s per unit of summed motor differential
	simPitchAuthority = 400
	simYawAuthority   = 200
	simRateTau        = 0.04 // s, first-order lag of rates toward command
	simHoverThrottle  = 0.5
	simClimbAuthority = 8 // m/s per unit of throttle above hover

	simArmAtMicros = 3_000_000
	simFramePeriod = 20_000 // µs between RC frames
)

// hostSim is the closed-loop flight model behind the host HAL sensor and
// motor interfaces. Motor commands produce body rates, rates integrate into
// attitude, and the sensors read the result back with a little noise, so the
// control path runs against something that pushes back.
type hostSim struct {
	mu    sync.Mutex
	clock *hostClock

	roll, pitch, yaw float32 // true attitude, degrees
	rates            [3]float32
	motors           [4]float32
	altitude         float32

	lastFrame uint64
	noise     uint32
}

func newHostSim(c *hostClock) *hostSim {
	return &hostSim{clock: c, noise: 0x2F6E2B1}
}

// step advances the model by dt µs. The runner calls it once per tick,
// before handing control to the flight loop.
func (s *hostSim) step(dtMicros uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt := float32(dtMicros) * 1e-6
	m := s.motors

	cmd := [3]float32{
		simRollAuthority * ((m[2] + m[3]) - (m[0] + m[1])),
		simPitchAuthority * ((m[0] + m[3]) - (m[1] + m[2])),
		simYawAuthority * ((m[0] + m[2]) - (m[1] + m[3])),
	}
	k := dt / simRateTau
	if k > 1 {
		k = 1
	}
	for i := range s.rates {
		s.rates[i] += (cmd[i] - s.rates[i]) * k
	}

	s.roll = clampDeg(s.roll+s.rates[0]*dt, 80)
	s.pitch = clampDeg(s.pitch+s.rates[1]*dt, 80)
	s.yaw = wrap360(s.yaw + s.rates[2]*dt)

	avg := (m[0] + m[1] + m[2] + m[3]) / 4
	if avg > 0 {
		s.altitude += (avg - simHoverThrottle) * simClimbAuthority * dt
	}
	if s.altitude < 0 {
		s.altitude = 0
	}
}

func (s *hostSim) ReadIMU() (IMUSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := float64(s.roll) * math.Pi / 180
	p := float64(s.pitch) * math.Pi / 180
	var out IMUSample
	for i := range out.Gyro {
		out.Gyro[i] = s.rates[i] + s.jitter()*0.3
	}
	out.Accel = [3]float32{
		float32(-math.Sin(p)) + s.jitter()*0.01,
		float32(math.Sin(r)*math.Cos(p)) + s.jitter()*0.01,
		float32(math.Cos(r)*math.Cos(p)) + s.jitter()*0.01,
	}
	return out, nil
}

func (s *hostSim) ReadPressure() (float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// International standard atmosphere, inverted from the altitude formula.
	p := 101325 * math.Pow(1-float64(s.altitude)/44330, 1/0.1903)
	return float32(p), nil
}

func (s *hostSim) ReadField() (x, y, z float32, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Horizontal field aligned with the simulated heading, plus a vertical
	// component. Tilt is ignored, matching the filter's use of the vector.
	h := float64(s.yaw) * math.Pi / 180
	x = float32(30 * math.Cos(h))
	y = float32(-30 * math.Sin(h))
	z = 10
	return x, y, z, nil
}

func (s *hostSim) jitter() float32 {
	// xorshift32, scaled to [-1, 1).
	s.noise ^= s.noise << 13
	s.noise ^= s.noise >> 17
	s.noise ^= s.noise << 5
	return float32(int32(s.noise)) / float32(math.MaxInt32)
}

// Channels plays the built-in flight script: centered sticks disarmed, then
// arm with a touch of climb throttle a few seconds in. Frames refresh on the
// receiver cadence, not per call.
func (s *hostSim) Channels() ([NumRCChannels]uint16, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var f [NumRCChannels]uint16
	for i := range f {
		f[i] = 1500
	}
	// AETR layout: channel 2 is throttle, channel 4 the arm switch.
	now := s.clock.Micros()
	if now >= simArmAtMicros {
		f[4] = 2000
		f[2] = 1550
	} else {
		f[4] = 1000
		f[2] = 1000
	}

	fresh := now-s.lastFrame >= simFramePeriod
	if fresh {
		s.lastFrame = now
	}
	return f, fresh
}

func (s *hostSim) Set(throttle [4]float32) {
	s.mu.Lock()
	s.motors = throttle
	s.mu.Unlock()
}

// attitude is read by the window overlay.
func (s *hostSim) attitude() (roll, pitch, yaw float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roll, s.pitch, s.yaw
}

func clampDeg(v, limit float32) float32 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func wrap360(y float32) float32 {
	for y >= 360 {
		y -= 360
	}
	for y < 0 {
		y += 360
	}
	return y
}
