package geocoder

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Clock is the time source of a Throttle, replaced by a fake in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Throttle allows one call in flight and at most one call start per interval.
type Throttle struct {
	limiter *rate.Limiter
	clock   Clock
	sem     chan struct{}
}

func NewThrottle(interval time.Duration, clock Clock) *Throttle {
	if clock == nil {
		clock = RealClock()
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		clock:   clock,
		sem:     make(chan struct{}, 1),
	}
}

// Do waits for its turn and runs fn. The wait is abandoned when ctx is done.
func (t *Throttle) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.sem }()

	now := t.clock.Now()
	r := t.limiter.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		if err := t.clock.Sleep(ctx, d); err != nil {
			r.CancelAt(t.clock.Now())
			return err
		}
	}
	return fn(ctx)
}
