package nodekit

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// MaxWait caps every Wait so a worker is never parked for long
const MaxWait = 60 * time.Second

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper
func ContextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WaitDuration converts amount in unit (seconds, minutes, hours, days) to a duration
func WaitDuration(amount float64, unit string) time.Duration {
	if !(amount > 0) {
		return 0
	}
	var base time.Duration
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "ms", "milliseconds":
		base = time.Millisecond
	case "m", "min", "minute", "minutes":
		base = time.Minute
	case "h", "hour", "hours":
		base = time.Hour
	case "d", "day", "days":
		base = 24 * time.Hour
	default:
		base = time.Second
	}
	// saturate before converting; an overflowing conversion goes negative
	ns := amount * float64(base)
	if math.IsInf(ns, 0) || math.IsNaN(ns) || ns >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// CapWait truncates d to MaxWait, logging a warning when it does
func CapWait(log zerolog.Logger, d time.Duration) time.Duration {
	if d > MaxWait {
		log.Warn().
			Dur("requested", d).
			Dur("cap", MaxWait).
			Msg("wait exceeds maximum, truncating")
		return MaxWait
	}
	if d < 0 {
		return 0
	}
	return d
}

// Wait sleeps for the capped duration using sleep (ContextSleep when nil)
// and returns the duration actually slept.
func Wait(ctx context.Context, log zerolog.Logger, d time.Duration, sleep Sleeper) (time.Duration, error) {
	d = CapWait(log, d)
	if sleep == nil {
		sleep = ContextSleep
	}
	if d == 0 {
		return 0, nil
	}
	if err := sleep(ctx, d); err != nil {
		return 0, err
	}
	return d, nil
}
