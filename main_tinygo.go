//go:build tinygo

package main

import (
	"kestrel/fc"
	"kestrel/fc/rc"
	"kestrel/hal"
)

func main() {
	h := hal.New(&rc.IBusParser{})
	s := fc.New(h, fc.DefaultConfig())
	for {
		s.Step()
	}
}
