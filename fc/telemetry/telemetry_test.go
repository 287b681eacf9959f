package telemetry

import (
	"encoding/binary"
	"testing"
)

type fakeSerial struct {
	in  []byte
	out []byte
}

func (s *fakeSerial) Read(p []byte) (int, error) {
	n := copy(p, s.in)
	s.in = s.in[n:]
	return n, nil
}

func (s *fakeSerial) Write(p []byte) (int, error) {
	s.out = append(s.out, p...)
	return len(p), nil
}

func TestAppendFrame(t *testing.T) {
	got := AppendFrame(nil, 0x07, []byte{0xA0, 0x0B})

	want := []byte{'$', 'K', 0x07, 0x02, 0xA0, 0x0B, 0x07 ^ 0x02 ^ 0xA0 ^ 0x0B}
	if len(got) != len(want) {
		t.Fatalf("frame length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestSendStatus(t *testing.T) {
	serial := &fakeSerial{}
	l := NewLink(serial)

	st := Status{
		TimeMicros: 123456,
		Roll:       -1502, // -15.02°
		Pitch:      250,
		Yaw:        17999, // centidegrees, [-18000, 18000)
		Motors:     [4]uint16{0, 500, 501, 1000},
		PressurePa: 101325,
		Armed:      true,
	}
	if err := l.SendStatus(st); err != nil {
		t.Fatalf("SendStatus() error: %v", err)
	}

	f := serial.out
	if len(f) != 4+statusPayloadLen+1 {
		t.Fatalf("frame length = %d, want %d", len(f), 4+statusPayloadLen+1)
	}
	if f[0] != '$' || f[1] != 'K' || f[2] != TypeStatus || f[3] != statusPayloadLen {
		t.Fatalf("frame header = % x", f[:4])
	}

	var ck byte
	for _, b := range f[2 : len(f)-1] {
		ck ^= b
	}
	if ck != f[len(f)-1] {
		t.Fatalf("checksum = %#x, want %#x", f[len(f)-1], ck)
	}

	p := f[4 : len(f)-1]
	if got := binary.LittleEndian.Uint32(p[0:]); got != st.TimeMicros {
		t.Fatalf("time = %d, want %d", got, st.TimeMicros)
	}
	if got := int16(binary.LittleEndian.Uint16(p[4:])); got != st.Roll {
		t.Fatalf("roll = %d, want %d", got, st.Roll)
	}
	if got := binary.LittleEndian.Uint16(p[16:]); got != st.Motors[3] {
		t.Fatalf("motor 3 = %d, want %d", got, st.Motors[3])
	}
	if p[22] != 1 {
		t.Fatalf("armed flag = %d, want 1", p[22])
	}
}

type fakeControls struct {
	perf        bool
	telemetryHz int
	blackboxHz  int
}

func (c *fakeControls) SetDebugPerf(on bool) { c.perf = on }

func (c *fakeControls) SetTelemetryRateHz(hz int) bool {
	c.telemetryHz = hz
	return true
}

func (c *fakeControls) SetBlackboxRateHz(hz int) bool {
	// Mirrors the system layer rejecting rates above the storage ceiling.
	if hz > 50 {
		return false
	}
	c.blackboxHz = hz
	return true
}

func TestCommandReader(t *testing.T) {
	serial := &fakeSerial{in: []byte("perf\nrate telemetry 20\nrate blackbox 999\n")}
	ctl := &fakeControls{}
	r := NewCommandReader(serial, ctl, nil)

	if executed := r.Poll(); !executed {
		t.Fatalf("Poll() = false, want at least one executed command")
	}
	if !ctl.perf {
		t.Fatalf("perf command did not enable the report")
	}
	if ctl.telemetryHz != 20 {
		t.Fatalf("telemetryHz = %d, want 20", ctl.telemetryHz)
	}
	if ctl.blackboxHz != 0 {
		t.Fatalf("blackboxHz = %d, want rejection of 999", ctl.blackboxHz)
	}
}

func TestCommandReaderSplitAcrossPolls(t *testing.T) {
	serial := &fakeSerial{in: []byte("debug")}
	ctl := &fakeControls{perf: true}
	r := NewCommandReader(serial, ctl, nil)

	if executed := r.Poll(); executed {
		t.Fatalf("Poll() on a partial line = true, want false")
	}

	serial.in = []byte(" off\n")
	if executed := r.Poll(); !executed {
		t.Fatalf("Poll() after line completion = false, want true")
	}
	if ctl.perf {
		t.Fatalf("debug off did not clear the perf report")
	}
}

func TestCommandReaderIgnoresGarbage(t *testing.T) {
	serial := &fakeSerial{in: []byte("frobnicate\n\n\n")}
	ctl := &fakeControls{}
	r := NewCommandReader(serial, ctl, nil)

	if executed := r.Poll(); executed {
		t.Fatalf("Poll() on unknown command = true, want false")
	}
}
