package telemetry

import (
	"fmt"
	"strconv"
	"strings"

	"kestrel/hal"
)

// Controls is the configuration surface commands may touch. The system layer
// implements it; rate setters report whether the value was accepted.
type Controls interface {
	SetDebugPerf(on bool)
	SetTelemetryRateHz(hz int) bool
	SetBlackboxRateHz(hz int) bool
}

// CommandReader polls the uplink for newline-terminated operator commands:
//
//	perf                 enable the periodic performance report
//	debug off            disable debug output
//	rate telemetry <hz>  retune the downlink cadence
//	rate blackbox <hz>   retune the flight-log cadence
type CommandReader struct {
	serial hal.Serial
	ctl    Controls
	log    hal.Logger

	line [64]byte
	n    int
}

func NewCommandReader(s hal.Serial, ctl Controls, log hal.Logger) *CommandReader {
	return &CommandReader{serial: s, ctl: ctl, log: log}
}

// Poll drains pending uplink bytes. It reports whether at least one complete
// command was executed.
func (c *CommandReader) Poll() bool {
	var buf [32]byte
	executed := false
	for {
		n, err := c.serial.Read(buf[:])
		if n == 0 || err != nil {
			return executed
		}
		for _, b := range buf[:n] {
			if b == '\n' || b == '\r' {
				if c.n > 0 && c.exec(string(c.line[:c.n])) {
					executed = true
				}
				c.n = 0
				continue
			}
			if c.n < len(c.line) {
				c.line[c.n] = b
				c.n++
			}
		}
	}
}

func (c *CommandReader) exec(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "perf":
		c.ctl.SetDebugPerf(true)
		c.reply("perf report on")
		return true

	case "debug":
		if len(fields) == 2 && fields[1] == "off" {
			c.ctl.SetDebugPerf(false)
			c.reply("debug off")
			return true
		}

	case "rate":
		if len(fields) != 3 {
			break
		}
		hz, err := strconv.Atoi(fields[2])
		if err != nil || hz <= 0 {
			break
		}
		var ok bool
		switch fields[1] {
		case "telemetry":
			ok = c.ctl.SetTelemetryRateHz(hz)
		case "blackbox":
			ok = c.ctl.SetBlackboxRateHz(hz)
		default:
			ok = false
		}
		if ok {
			c.reply(fmt.Sprintf("rate %s %dhz", fields[1], hz))
		} else {
			c.reply(fmt.Sprintf("rate %s rejected", fields[1]))
		}
		return ok
	}

	c.reply("unknown command: " + line)
	return false
}

func (c *CommandReader) reply(s string) {
	if c.log != nil {
		c.log.WriteLineString(s)
	}
}
