package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptsExhausted is returned when a bounded Policy runs out of attempts.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Policy is a fixed-interval retry loop.
//
// A zero MaxAttempts retries without bound and a zero Deadline never expires,
// so Policy{Interval: time.Minute} waits as long as it takes.
type Policy struct {
	// Interval is the pause between two attempts.
	Interval time.Duration
	// MaxAttempts bounds the number of attempts. Zero means unbounded.
	MaxAttempts int
	// Deadline bounds the total wall time of the loop. Zero means none.
	Deadline time.Duration
	// Sleep replaces the timer based wait, mostly for tests.
	Sleep SleepFunc
}

// Forever returns an unbounded policy pausing interval between attempts.
func Forever(interval time.Duration) Policy {
	return Policy{Interval: interval}
}

// Unbounded reports whether the policy may retry forever.
func (p Policy) Unbounded() bool {
	return p.MaxAttempts <= 0 && p.Deadline <= 0
}

// Poll calls cond until it reports done.
//
// A non-fatal error from cond counts as "not done yet". A Fatal error is
// returned as is. The context is checked before every pause.
func (p Policy) Poll(ctx context.Context, cond func(ctx context.Context, attempt int) (bool, error)) error {
	if p.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Deadline)
		defer cancel()
	}

	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for attempt := 1; ; attempt++ {
		done, err := cond(ctx, attempt)
		if err != nil && IsFatal(err) {
			return err
		}
		if err == nil && done {
			return nil
		}

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			if err != nil {
				return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempt, err)
			}
			return fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, attempt)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("retry stopped after %d attempts: %w", attempt, ctxErr)
		}
		if sleepErr := sleep(ctx, p.Interval); sleepErr != nil {
			return fmt.Errorf("retry stopped after %d attempts: %w", attempt, sleepErr)
		}
	}
}

// Do calls op until it returns nil, a Fatal error, or the policy gives up.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	return p.Poll(ctx, func(ctx context.Context, attempt int) (bool, error) {
		if err := op(ctx, attempt); err != nil {
			return false, err
		}
		return true, nil
	})
}
