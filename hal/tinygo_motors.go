//go:build tinygo && baremetal

package hal

import "machine"

// ESC outputs: conventional 400Hz PWM, 1000µs = stopped, 2000µs = full.
const (
	escPeriodNs   = 2_500_000
	escPulseMinNs = 1_000_000
	escPulseMaxNs = 2_000_000
)

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetTop(top uint32)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

type pwmOut struct {
	pwm pwmDevice
	ch  uint8
}

type pwmMotors struct {
	outs [4]pwmOut
	ok   bool
}

func newPWMMotors(pins [4]machine.Pin) *pwmMotors {
	m := &pwmMotors{ok: true}
	for i, pin := range pins {
		pwm := pwmForPin(pin)
		if pwm == nil {
			m.ok = false
			return m
		}
		if err := pwm.Configure(machine.PWMConfig{Period: escPeriodNs}); err != nil {
			m.ok = false
			return m
		}
		ch, err := pwm.Channel(pin)
		if err != nil {
			m.ok = false
			return m
		}
		m.outs[i] = pwmOut{pwm: pwm, ch: ch}
	}
	m.Set([4]float32{})
	for _, o := range m.outs {
		o.pwm.Enable(true)
	}
	return m
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

func (m *pwmMotors) Set(throttle [4]float32) {
	if !m.ok {
		return
	}
	for i, o := range m.outs {
		t := throttle[i]
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		pulse := uint64(escPulseMinNs + t*(escPulseMaxNs-escPulseMinNs))
		top := uint64(o.pwm.Top())
		o.pwm.Set(o.ch, uint32(top*pulse/escPeriodNs))
	}
}
