// Package telemetry frames downlink status over a byte-oriented channel and
// decodes operator commands arriving on the same link.
package telemetry

import (
	"encoding/binary"
	"fmt"

	"kestrel/hal"
)

// Frame: '$' 'K' type len payload… checksum, where checksum is the XOR of
// type, len, and every payload byte. Same shape both directions; only status
// frames are emitted today.
const (
	header0 = '$'
	header1 = 'K'

	TypeStatus = 0x01
)

// Status is the periodic downlink snapshot.
type Status struct {
	TimeMicros uint32
	Roll       int16 // centidegrees
	Pitch      int16
	Yaw        int16
	Motors     [4]uint16 // normalized throttle ×1000
	PressurePa uint32
	Armed      bool
}

const statusPayloadLen = 4 + 3*2 + 4*2 + 4 + 1

// AppendFrame appends one framed message to dst and returns the result.
func AppendFrame(dst []byte, typ byte, payload []byte) []byte {
	dst = append(dst, header0, header1, typ, byte(len(payload)))
	dst = append(dst, payload...)
	ck := typ ^ byte(len(payload))
	for _, b := range payload {
		ck ^= b
	}
	return append(dst, ck)
}

func (s Status) appendPayload(dst []byte) []byte {
	var p [statusPayloadLen]byte
	binary.LittleEndian.PutUint32(p[0:], s.TimeMicros)
	binary.LittleEndian.PutUint16(p[4:], uint16(s.Roll))
	binary.LittleEndian.PutUint16(p[6:], uint16(s.Pitch))
	binary.LittleEndian.PutUint16(p[8:], uint16(s.Yaw))
	for i, m := range s.Motors {
		binary.LittleEndian.PutUint16(p[10+2*i:], m)
	}
	binary.LittleEndian.PutUint32(p[18:], s.PressurePa)
	if s.Armed {
		p[22] = 1
	}
	return append(dst, p[:]...)
}

// Link owns the downlink side of the channel.
type Link struct {
	serial hal.Serial
	buf    []byte

	frames uint32
	bytes  uint32
	errs   uint32
}

func NewLink(s hal.Serial) *Link {
	return &Link{serial: s, buf: make([]byte, 0, 64)}
}

// SendStatus frames and writes one status snapshot.
func (l *Link) SendStatus(st Status) error {
	l.buf = AppendFrame(l.buf[:0], TypeStatus, st.appendPayload(nil))
	n, err := l.serial.Write(l.buf)
	l.bytes += uint32(n)
	if err != nil {
		l.errs++
		return err
	}
	l.frames++
	return nil
}

// Diag is the channel's line in the perf report.
func (l *Link) Diag() string {
	return fmt.Sprintf("telemetry: %d frames %d bytes %d errors", l.frames, l.bytes, l.errs)
}
