package rc

import (
	"encoding/binary"

	"kestrel/hal"
)

// FlySky iBUS: 32-byte frames at 115200 8N1. Header 0x20 0x40, then 14
// little-endian channel words, then a 16-bit checksum equal to 0xFFFF minus
// the sum of the first 30 bytes.
const (
	ibusFrameLen = 32
	ibusHeader0  = 0x20
	ibusHeader1  = 0x40
)

// IBusParser reassembles iBUS frames from a byte stream. Feed one byte at a
// time; a bad header or checksum drops the partial frame and resynchronizes.
type IBusParser struct {
	buf [ibusFrameLen]byte
	n   int
}

// Feed consumes one byte. ok is true when b completed a valid frame, in
// which case ch holds the first NumRCChannels channel pulse widths.
func (p *IBusParser) Feed(b byte) (ch [hal.NumRCChannels]uint16, ok bool) {
	switch {
	case p.n == 0:
		if b != ibusHeader0 {
			return ch, false
		}
	case p.n == 1:
		if b != ibusHeader1 {
			p.n = 0
			// The stray byte may itself start a frame.
			if b == ibusHeader0 {
				p.buf[0] = b
				p.n = 1
			}
			return ch, false
		}
	}

	p.buf[p.n] = b
	p.n++
	if p.n < ibusFrameLen {
		return ch, false
	}
	p.n = 0

	var sum uint16
	for _, v := range p.buf[:ibusFrameLen-2] {
		sum += uint16(v)
	}
	if 0xFFFF-sum != binary.LittleEndian.Uint16(p.buf[ibusFrameLen-2:]) {
		return ch, false
	}

	for i := 0; i < hal.NumRCChannels; i++ {
		ch[i] = binary.LittleEndian.Uint16(p.buf[2+2*i:])
	}
	return ch, true
}
