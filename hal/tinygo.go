//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

type tinyGoHAL struct {
	clock   *tinyGoClock
	logger  *uartLogger
	led     *pinLED
	imu     IMU
	baro    Baro
	mag     Mag
	rc      *uartRC
	motors  *pwmMotors
	serial  *uartSerial
	storage Storage
	status  StatusDisplay
}

// New returns a Pico 2 (RP2350) HAL implementation.
//
// UART0 on GP0 (TX) / GP1 (RX), 115200 8N1: telemetry downlink, command
// uplink, and the diagnostic log share the link.
// UART1 on GP8 (TX) / GP9 (RX), 115200: receiver serial stream, decoded by
// the injected protocol decoder.
// I2C0 on GP4 (SDA) / GP5 (SCL), 400kHz: IMU, barometer, magnetometer, OLED.
// PWM on GP2, GP3, GP6, GP7: ESC outputs, 400Hz, 1000-2000µs pulses.
func New(dec RCDecoder) HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	rcUART := machine.UART1
	rcUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP8,
		RX:       machine.GP9,
	})

	machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.GP4,
		SCL:       machine.GP5,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	logger := &uartLogger{uart: uart}
	return &tinyGoHAL{
		clock:   newTinyGoClock(),
		logger:  logger,
		led:     &pinLED{pin: ledPin},
		imu:     newMPU6050(machine.I2C0),
		baro:    newBMP280(machine.I2C0),
		mag:     newLSM303(machine.I2C0),
		rc:      &uartRC{uart: rcUART, dec: dec},
		motors:  newPWMMotors([4]machine.Pin{machine.GP2, machine.GP3, machine.GP6, machine.GP7}),
		serial:  &uartSerial{uart: uart},
		storage: newSDStorage(),
		status:  newOLEDStatus(machine.I2C0),
	}
}

func (h *tinyGoHAL) Clock() Clock          { return h.clock }
func (h *tinyGoHAL) Logger() Logger        { return h.logger }
func (h *tinyGoHAL) LED() LED              { return h.led }
func (h *tinyGoHAL) IMU() IMU              { return h.imu }
func (h *tinyGoHAL) Baro() Baro            { return h.baro }
func (h *tinyGoHAL) Mag() Mag              { return h.mag }
func (h *tinyGoHAL) RC() RCInput           { return h.rc }
func (h *tinyGoHAL) Motors() Motors        { return h.motors }
func (h *tinyGoHAL) Telemetry() Serial     { return h.serial }
func (h *tinyGoHAL) Storage() Storage      { return h.storage }
func (h *tinyGoHAL) Status() StatusDisplay { return h.status }

type tinyGoClock struct {
	start time.Time
}

func newTinyGoClock() *tinyGoClock { return &tinyGoClock{start: time.Now()} }

func (c *tinyGoClock) Micros() uint64 {
	return uint64(time.Since(c.start).Microseconds())
}

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

type uartSerial struct {
	uart *machine.UART
}

func (s *uartSerial) Read(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	return s.uart.Read(p)
}

func (s *uartSerial) Write(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	return s.uart.Write(p)
}

// uartRC drains the receiver UART through the protocol decoder. The last
// complete frame wins; fresh reports whether any frame completed since the
// previous call.
type uartRC struct {
	uart  *machine.UART
	dec   RCDecoder
	frame [NumRCChannels]uint16
}

func (r *uartRC) Channels() ([NumRCChannels]uint16, bool) {
	if r.uart == nil || r.dec == nil {
		return r.frame, false
	}
	fresh := false
	var p [64]byte
	for {
		n, err := r.uart.Read(p[:])
		if n == 0 || err != nil {
			break
		}
		for _, b := range p[:n] {
			if f, ok := r.dec.Feed(b); ok {
				r.frame = f
				fresh = true
			}
		}
	}
	return r.frame, fresh
}
