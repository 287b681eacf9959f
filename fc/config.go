package fc

// DebugMode selects what the debug link emits. Only DebugPerf is meaningful
// to the scheduler core; further modes are owned by their subsystems.
type DebugMode uint8

const (
	DebugOff DebugMode = iota
	DebugPerf
)

// Config holds the externally tunable knobs. The two cadence values are
// re-applied to their tasks on every loop iteration, so a change takes
// effect within one sweep.
type Config struct {
	TelemetryIntervalMicros uint64
	BlackboxIntervalMicros  uint64
	Debug                   DebugMode
}

func DefaultConfig() *Config {
	return &Config{
		TelemetryIntervalMicros: 100_000, // 10 Hz downlink
		BlackboxIntervalMicros:  20_000,  // 50 Hz flight log
	}
}

// maxConfiguredInterval bounds config-driven cadences to 1s so a bad value
// cannot starve a task indefinitely.
const maxConfiguredInterval = 1_000_000

// Task cadences in µs, fixed at build time. Table order in newTaskTable is
// the priority order.
const (
	gyroInterval    = 1_000 // 1 kHz sampling + attitude
	controlInterval = 1_000
	rcInterval      = 20_000
	baroInterval    = 25_000
	magInterval     = 100_000
	commandInterval = 50_000
	statusInterval  = 200_000
	ledInterval     = 100_000
	reportInterval  = 10_000_000
)
