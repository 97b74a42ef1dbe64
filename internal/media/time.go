package media

import "time"

// Capture sources express sample times in 100 ns reference-time ticks.
const TicksPerMillisecond = 10000

func TicksToMilliseconds(ticks int64) int64 {
	return ticks / TicksPerMillisecond
}

func MillisecondsToTicks(ms int64) int64 {
	return ms * TicksPerMillisecond
}

func DurationToTicks(d time.Duration) int64 {
	return int64(d / (100 * time.Nanosecond))
}
