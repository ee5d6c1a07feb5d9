package scheduler

import (
	"math"

	"github.com/rivergate/usbvault/pkg/load"
)

const (
	mediumConcurrencyFactor = 0.7
	highConcurrencyFactor   = 0.4
)

// concurrencyCap returns the maximum number of workers that may be
// simultaneously active at the given load level, per spec §4.9: LOW is
// the full pool size, MEDIUM and HIGH scale it down, each rounded up so
// a non-trivial pool never collapses to zero concurrency.
func concurrencyCap(level load.Level, poolSize int) int {
	switch level {
	case load.LevelMedium:
		return ceilScale(poolSize, mediumConcurrencyFactor)
	case load.LevelHigh:
		return ceilScale(poolSize, highConcurrencyFactor)
	default:
		return poolSize
	}
}

// effectiveRate scales the configured base admission rate identically to
// concurrencyCap, so the rate limiter and the concurrency cap relax and
// tighten together.
func effectiveRate(level load.Level, base float64) float64 {
	switch level {
	case load.LevelMedium:
		return base * mediumConcurrencyFactor
	case load.LevelHigh:
		return base * highConcurrencyFactor
	default:
		return base
	}
}

func ceilScale(n int, factor float64) int {
	scaled := int(math.Ceil(float64(n) * factor))
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}
