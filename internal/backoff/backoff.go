// Package backoff maps a completed-attempt count to the delay before the
// next attempt.
package backoff

import (
	"math"
	"time"

	"github.com/marshall/retry/internal/config"
)

// maxShift is the largest exponent for which 2^n fits in a uint64.
const maxShift = 63

// Policy is a deterministic delay schedule. The zero value sleeps 0s.
type Policy struct {
	// Exponential selects min(2^n, Max) seconds over the fixed Sleep.
	Exponential bool
	Sleep       uint64
	Max         uint64
}

// FromConfig builds the policy described by cfg.
func FromConfig(cfg config.Config) Policy {
	return Policy{
		Exponential: cfg.Backoff,
		Sleep:       cfg.Sleep,
		Max:         cfg.MaxBackoff,
	}
}

// Seconds returns the delay in whole seconds after n completed attempts.
//
// The retry loop only sleeps after at least one attempt, so n starts at 1 on
// the sleep path: the first exponential delay is 2s. Seconds(0) is 1 when
// exponential and is never slept.
func (p Policy) Seconds(n uint64) uint64 {
	if !p.Exponential {
		return p.Sleep
	}
	if n >= maxShift {
		return p.Max
	}
	return min(uint64(1)<<n, p.Max)
}

// MaxDelay is the longest representable delay.
const MaxDelay = time.Duration(math.MaxInt64)

// maxSeconds is the largest whole-second count that fits in a time.Duration.
const maxSeconds = uint64(math.MaxInt64 / int64(time.Second))

// Delay is Seconds as a duration, saturating at MaxDelay.
func (p Policy) Delay(n uint64) time.Duration {
	s := p.Seconds(n)
	if s > maxSeconds {
		return MaxDelay
	}
	return time.Duration(s) * time.Second
}
