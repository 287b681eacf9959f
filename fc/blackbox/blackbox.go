// Package blackbox encodes fixed-size flight-log records and writes them to
// the append-only storage sink.
package blackbox

import (
	"encoding/binary"
	"errors"
	"fmt"

	"kestrel/hal"
)

// MaxWriteHz is the storage-rate ceiling. It is a fixed constant: the write
// budget is provisioned for the slowest supported card, not probed at
// runtime.
const MaxWriteHz = 50

// RecordSize is the fixed on-disk record length in bytes.
const RecordSize = 32

const (
	magic0 = 'K'
	magic1 = 'B'

	flagArmed = 1 << 0
)

var ErrBadRecord = errors.New("blackbox: bad record")

// Record is one flight-log sample. Attitude is in centidegrees, gyro in
// decidegrees per second, motors in normalized throttle ×1000.
type Record struct {
	Seq        uint32
	TimeMicros uint32
	Roll       int16
	Pitch      int16
	Yaw        int16
	Gyro       [3]int16
	Motors     [4]uint16
	Armed      bool
}

// Encode writes the record into b, which must hold RecordSize bytes.
func (r Record) Encode(b []byte) {
	_ = b[RecordSize-1]
	b[0], b[1] = magic0, magic1
	binary.LittleEndian.PutUint32(b[2:], r.Seq)
	binary.LittleEndian.PutUint32(b[6:], r.TimeMicros)
	binary.LittleEndian.PutUint16(b[10:], uint16(r.Roll))
	binary.LittleEndian.PutUint16(b[12:], uint16(r.Pitch))
	binary.LittleEndian.PutUint16(b[14:], uint16(r.Yaw))
	for i, g := range r.Gyro {
		binary.LittleEndian.PutUint16(b[16+2*i:], uint16(g))
	}
	for i, m := range r.Motors {
		binary.LittleEndian.PutUint16(b[22+2*i:], m)
	}
	var flags byte
	if r.Armed {
		flags |= flagArmed
	}
	b[30] = flags

	var ck byte
	for _, v := range b[:RecordSize-1] {
		ck ^= v
	}
	b[31] = ck
}

// Decode parses one record from b.
func Decode(b []byte) (Record, error) {
	if len(b) < RecordSize || b[0] != magic0 || b[1] != magic1 {
		return Record{}, ErrBadRecord
	}
	var ck byte
	for _, v := range b[:RecordSize-1] {
		ck ^= v
	}
	if ck != b[RecordSize-1] {
		return Record{}, ErrBadRecord
	}

	r := Record{
		Seq:        binary.LittleEndian.Uint32(b[2:]),
		TimeMicros: binary.LittleEndian.Uint32(b[6:]),
		Roll:       int16(binary.LittleEndian.Uint16(b[10:])),
		Pitch:      int16(binary.LittleEndian.Uint16(b[12:])),
		Yaw:        int16(binary.LittleEndian.Uint16(b[14:])),
		Armed:      b[30]&flagArmed != 0,
	}
	for i := range r.Gyro {
		r.Gyro[i] = int16(binary.LittleEndian.Uint16(b[16+2*i:]))
	}
	for i := range r.Motors {
		r.Motors[i] = binary.LittleEndian.Uint16(b[22+2*i:])
	}
	return r, nil
}

// Writer sequences records onto a storage sink.
type Writer struct {
	store hal.Storage
	seq   uint32

	records uint32
	bytes   uint32
	dropped uint32

	scratch [RecordSize]byte
}

func NewWriter(store hal.Storage) *Writer {
	return &Writer{store: store}
}

// Write assigns the next sequence number and appends the record. A failed
// append is counted and dropped; the log stream tolerates holes.
func (w *Writer) Write(r Record) bool {
	r.Seq = w.seq
	w.seq++
	r.Encode(w.scratch[:])

	n, err := w.store.Append(w.scratch[:])
	w.bytes += uint32(n)
	if err != nil || n != RecordSize {
		w.dropped++
		return false
	}
	w.records++
	return true
}

// Sync flushes the storage sink.
func (w *Writer) Sync() error { return w.store.Sync() }

// Diag is the storage line in the perf report.
func (w *Writer) Diag() string {
	return fmt.Sprintf("blackbox: %d records %d bytes %d dropped (%s)",
		w.records, w.bytes, w.dropped, w.store.Diag())
}
