//go:build !tinygo

package hal

import (
	"os"
	"sync"
)

// hostSerial adapts stdin/an output file to the non-blocking Serial
// contract. A pump goroutine owns the blocking stdin reads; Read drains
// whatever the pump has buffered and returns (0, nil) otherwise.
//
// Writes carry binary telemetry frames, so they go to the file named by
// KESTREL_TELEM_PATH rather than interleaving with the stdout log. Without
// the variable the frames are counted and dropped.
type hostSerial struct {
	mu  sync.Mutex
	buf []byte
	w   *os.File
}

func newHostSerial() *hostSerial {
	s := &hostSerial{}
	if path := os.Getenv("KESTREL_TELEM_PATH"); path != "" {
		if f, err := os.Create(path); err == nil {
			s.w = f
		}
	}
	go s.pump(os.Stdin)
	return s
}

func (s *hostSerial) pump(r *os.File) {
	var p [256]byte
	for {
		n, err := r.Read(p[:])
		if n > 0 {
			s.mu.Lock()
			s.buf = append(s.buf, p[:n]...)
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *hostSerial) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *hostSerial) Write(p []byte) (int, error) {
	if s.w == nil {
		return len(p), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
