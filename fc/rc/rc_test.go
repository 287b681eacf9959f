package rc

import (
	"encoding/binary"
	"testing"

	"kestrel/hal"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		pulse uint16
		want  float32
	}{
		{PulseMid, 0},
		{PulseMid + Deadband, 0},
		{PulseMid - Deadband, 0},
		{PulseMax, 1},
		{PulseMin, -1},
		{2200, 1},  // over-range clamps
		{800, -1},
	}
	for _, tc := range cases {
		if got := Normalize(tc.pulse); got != tc.want {
			t.Fatalf("Normalize(%d) = %v, want %v", tc.pulse, got, tc.want)
		}
	}
}

func TestNormalizeThrottle(t *testing.T) {
	if got := NormalizeThrottle(PulseMin); got != 0 {
		t.Fatalf("NormalizeThrottle(min) = %v, want 0", got)
	}
	if got := NormalizeThrottle(PulseMax); got != 1 {
		t.Fatalf("NormalizeThrottle(max) = %v, want 1", got)
	}
	if got := NormalizeThrottle(PulseMid); got != 0.5 {
		t.Fatalf("NormalizeThrottle(mid) = %v, want 0.5", got)
	}
}

func TestStateArmSwitch(t *testing.T) {
	var s State
	var frame [hal.NumRCChannels]uint16
	for i := range frame {
		frame[i] = PulseMid
	}
	frame[ChanThrottle] = PulseMin

	frame[ChanArm] = PulseMin
	s.Apply(frame)
	if s.Sticks().Armed {
		t.Fatalf("Armed with low arm channel, want disarmed")
	}

	frame[ChanArm] = PulseMax
	s.Apply(frame)
	if !s.Sticks().Armed {
		t.Fatalf("not Armed with high arm channel")
	}
}

func TestStateFailsafe(t *testing.T) {
	var s State
	var frame [hal.NumRCChannels]uint16
	for i := range frame {
		frame[i] = PulseMax
	}
	s.Apply(frame)

	crossed := false
	for i := 0; i < failsafeMisses; i++ {
		if s.MissFrame() {
			crossed = true
		}
	}
	if !crossed {
		t.Fatalf("failsafe never triggered after %d misses", failsafeMisses)
	}
	if st := s.Sticks(); st.Armed || st.Throttle != 0 {
		t.Fatalf("failsafe sticks = %+v, want disarmed zero throttle", st)
	}
	if s.MissFrame() {
		t.Fatalf("MissFrame() reported a second failsafe crossing")
	}

	// Frames resuming clears the failsafe.
	s.Apply(frame)
	if s.Failsafe() {
		t.Fatalf("Failsafe() = true after a fresh frame")
	}
}

func ibusFrame(ch []uint16) []byte {
	b := make([]byte, ibusFrameLen)
	b[0] = ibusHeader0
	b[1] = ibusHeader1
	for i, v := range ch {
		binary.LittleEndian.PutUint16(b[2+2*i:], v)
	}
	var sum uint16
	for _, v := range b[:ibusFrameLen-2] {
		sum += uint16(v)
	}
	binary.LittleEndian.PutUint16(b[ibusFrameLen-2:], 0xFFFF-sum)
	return b
}

func TestIBusParser(t *testing.T) {
	var p IBusParser
	want := []uint16{1500, 1200, 1000, 1500, 2000, 1500, 1500, 1500, 1500, 1500, 1500, 1500, 1500, 1500}

	var got [hal.NumRCChannels]uint16
	var ok bool
	for _, b := range ibusFrame(want) {
		got, ok = p.Feed(b)
	}
	if !ok {
		t.Fatalf("Feed() never completed a frame")
	}
	for i := 0; i < hal.NumRCChannels; i++ {
		if got[i] != want[i] {
			t.Fatalf("channel %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestIBusParserResyncsAfterGarbage(t *testing.T) {
	var p IBusParser
	stream := append([]byte{0x00, 0x20, 0x99, 0xFF}, ibusFrame([]uint16{1500, 1500, 1000, 1500})...)

	var ok bool
	for _, b := range stream {
		if _, o := p.Feed(b); o {
			ok = true
		}
	}
	if !ok {
		t.Fatalf("parser did not recover a frame after garbage bytes")
	}
}

func TestIBusParserRejectsBadChecksum(t *testing.T) {
	var p IBusParser
	frame := ibusFrame([]uint16{1500, 1500, 1000, 1500})
	frame[ibusFrameLen-1] ^= 0xFF

	for _, b := range frame {
		if _, ok := p.Feed(b); ok {
			t.Fatalf("parser accepted a frame with a bad checksum")
		}
	}
}
