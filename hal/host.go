//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

type hostHAL struct {
	clock   *hostClock
	logger  *hostLogger
	led     *hostLED
	sim     *hostSim
	serial  *hostSerial
	storage *hostStorage
	status  *hostStatus
}

// New returns a host HAL implementation backed by the flight simulation.
func New() HAL {
	logger := &hostLogger{w: os.Stdout}
	clock := &hostClock{}
	return &hostHAL{
		clock:   clock,
		logger:  logger,
		led:     &hostLED{},
		sim:     newHostSim(clock),
		serial:  newHostSerial(),
		storage: newHostStorage(),
		status:  &hostStatus{},
	}
}

func (h *hostHAL) Clock() Clock          { return h.clock }
func (h *hostHAL) Logger() Logger        { return h.logger }
func (h *hostHAL) LED() LED              { return h.led }
func (h *hostHAL) IMU() IMU              { return h.sim }
func (h *hostHAL) Baro() Baro            { return h.sim }
func (h *hostHAL) Mag() Mag              { return h.sim }
func (h *hostHAL) RC() RCInput           { return h.sim }
func (h *hostHAL) Motors() Motors        { return h.sim }
func (h *hostHAL) Telemetry() Serial     { return h.serial }
func (h *hostHAL) Storage() Storage      { return h.storage }
func (h *hostHAL) Status() StatusDisplay { return h.status }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu sync.Mutex
	on bool
}

func (l *hostLED) High() {
	l.mu.Lock()
	l.on = true
	l.mu.Unlock()
}

func (l *hostLED) Low() {
	l.mu.Lock()
	l.on = false
	l.mu.Unlock()
}

func (l *hostLED) state() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// hostStatus keeps the status rows in memory for the window overlay.
type hostStatus struct {
	mu   sync.Mutex
	rows [4]string
}

func (s *hostStatus) WriteLine(row int, text string) {
	if row < 0 || row >= len(s.rows) {
		return
	}
	s.mu.Lock()
	s.rows[row] = text
	s.mu.Unlock()
}

func (s *hostStatus) Display() {}

func (s *hostStatus) snapshot() [4]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}
