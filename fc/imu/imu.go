// Package imu estimates vehicle attitude from gyro, accelerometer, and
// magnetometer samples with a complementary filter.
package imu

import (
	"math"

	"kestrel/hal"
)

// Attitude is the estimated orientation in degrees. Yaw is in [0, 360).
type Attitude struct {
	Roll  float32
	Pitch float32
	Yaw   float32
}

const (
	// Accelerometer correction weight per update. Small enough that gyro
	// integration dominates short-term, large enough to kill drift.
	accGain = 0.02
	magGain = 0.05

	// Accel magnitude window (in g) outside of which the tilt reference is
	// unusable (maneuvering or vibration) and correction is skipped.
	accMagMin = 0.8
	accMagMax = 1.2
)

// Filter is a complementary attitude filter. The zero value snaps to the
// first accelerometer sample instead of assuming level.
type Filter struct {
	att   Attitude
	ready bool
}

func NewFilter() *Filter { return &Filter{} }

// Update integrates one IMU sample. dtMicros is the time since the previous
// sample.
func (f *Filter) Update(s hal.IMUSample, dtMicros uint64) {
	dt := float32(dtMicros) * 1e-6

	f.att.Roll += s.Gyro[0] * dt
	f.att.Pitch += s.Gyro[1] * dt
	f.att.Yaw = wrapYaw(f.att.Yaw + s.Gyro[2]*dt)

	ax, ay, az := float64(s.Accel[0]), float64(s.Accel[1]), float64(s.Accel[2])
	mag := math.Sqrt(ax*ax + ay*ay + az*az)
	if mag < accMagMin || mag > accMagMax {
		return
	}

	rollAcc := float32(math.Atan2(ay, az) * (180 / math.Pi))
	pitchAcc := float32(math.Atan2(-ax, math.Sqrt(ay*ay+az*az)) * (180 / math.Pi))

	if !f.ready {
		f.att.Roll = rollAcc
		f.att.Pitch = pitchAcc
		f.ready = true
		return
	}
	f.att.Roll += (rollAcc - f.att.Roll) * accGain
	f.att.Pitch += (pitchAcc - f.att.Pitch) * accGain
}

// UpdateMag blends a magnetometer heading into yaw. The field vector is in
// body frame; tilt compensation is skipped, which is adequate near level.
func (f *Filter) UpdateMag(x, y, z float32) {
	heading := float32(math.Atan2(float64(-y), float64(x)) * (180 / math.Pi))
	heading = wrapYaw(heading)

	diff := heading - f.att.Yaw
	// Take the short way around the circle.
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	f.att.Yaw = wrapYaw(f.att.Yaw + diff*magGain)
}

func (f *Filter) Attitude() Attitude { return f.att }

func wrapYaw(y float32) float32 {
	for y >= 360 {
		y -= 360
	}
	for y < 0 {
		y += 360
	}
	return y
}
