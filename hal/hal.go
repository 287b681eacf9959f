package hal

import "errors"

var ErrNotImplemented = errors.New("not implemented")

// Clock is the monotonic microsecond timebase for the scheduler core.
type Clock interface {
	Micros() uint64
}

// Logger writes newline-delimited diagnostic lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

// Serial is a byte-oriented link.
//
// Read must not block: it returns (0, nil) when no bytes are pending.
// On-target this maps to a buffered UART; on host to a pumped stdin.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// IMUSample is one combined gyro/accelerometer reading.
//
// Gyro is in degrees per second, Accel in g, both in body frame
// (X forward, Y right, Z down).
type IMUSample struct {
	Gyro  [3]float32
	Accel [3]float32
}

// IMU samples the gyro/accelerometer pair.
type IMU interface {
	ReadIMU() (IMUSample, error)
}

// Baro reads static pressure in pascal.
type Baro interface {
	ReadPressure() (float32, error)
}

// Mag reads the magnetic field vector in microtesla, body frame.
type Mag interface {
	ReadField() (x, y, z float32, err error)
}

// NumRCChannels is the number of receiver channels carried to the mixer.
const NumRCChannels = 8

// RCInput provides the latest receiver frame as pulse widths in µs.
//
// fresh is true only when a new frame arrived since the previous call.
type RCInput interface {
	Channels() (ch [NumRCChannels]uint16, fresh bool)
}

// RCDecoder turns a receiver byte stream into channel frames. The protocol
// lives above the HAL; on-target the HAL feeds its receiver UART through an
// injected decoder.
type RCDecoder interface {
	Feed(b byte) (ch [NumRCChannels]uint16, ok bool)
}

// Motors drives the ESC outputs with normalized throttle values in [0, 1].
type Motors interface {
	Set(throttle [4]float32)
}

// Storage is an append-only flight-log sink.
type Storage interface {
	Append(p []byte) (int, error)
	Sync() error
	// Diag returns a one-line human-readable status for the perf report.
	Diag() string
}

// StatusDisplay renders short fixed-row status text (OLED on-target).
// Rows are buffered; Display pushes the frame out.
type StatusDisplay interface {
	WriteLine(row int, s string)
	Display()
}

// HAL is the only contact point between the flight code and the board.
type HAL interface {
	Clock() Clock
	Logger() Logger
	LED() LED
	IMU() IMU
	Baro() Baro
	Mag() Mag
	RC() RCInput
	Motors() Motors
	Telemetry() Serial
	Storage() Storage
	Status() StatusDisplay
}
