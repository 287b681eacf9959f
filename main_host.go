//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"kestrel/fc"
	"kestrel/hal"
)

func main() {
	var cfg hal.HeadlessConfig
	var debugPerf bool
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 1000, "Loop rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.BoolVar(&debugPerf, "debug", false, "Start with the performance report enabled.")
	flag.Parse()

	newApp := func(h hal.HAL) func() error {
		c := fc.DefaultConfig()
		if debugPerf {
			c.Debug = fc.DebugPerf
		}
		s := fc.New(h, c)
		return func() error {
			s.Step()
			return nil
		}
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, cfg); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
