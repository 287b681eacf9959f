//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

const hostLogDefaultPath = "kestrel.bbl"

// hostStorage is the file-backed flight log. The file is truncated on start:
// one process run is one flight.
type hostStorage struct {
	mu      sync.Mutex
	f       *os.File
	path    string
	written uint64
}

func newHostStorage() *hostStorage {
	path := os.Getenv("KESTREL_BB_PATH")
	if path == "" {
		path = hostLogDefaultPath
	}
	f, err := os.Create(path)
	if err != nil {
		return &hostStorage{path: path}
	}
	return &hostStorage{f: f, path: path}
}

func (s *hostStorage) Append(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return 0, ErrNotImplemented
	}
	n, err := s.f.Write(p)
	s.written += uint64(n)
	return n, err
}

func (s *hostStorage) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrNotImplemented
	}
	return s.f.Sync()
}

func (s *hostStorage) Diag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("log: %s %d bytes", s.path, s.written)
}
