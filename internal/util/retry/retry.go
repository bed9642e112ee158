package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backoff retries a short-lived call with doubling pauses.
type Backoff struct {
	// Retries is the number of attempts after the first one.
	Retries int
	// Initial is the first pause. It doubles after every failure.
	Initial time.Duration
	// Max caps a single pause. Zero means 30s.
	Max time.Duration
	// Sleep replaces the timer based wait.
	Sleep SleepFunc
}

// NewBackoff returns a Backoff with the given retry count and first pause.
func NewBackoff(retries int, initial time.Duration) Backoff {
	return Backoff{Retries: retries, Initial: initial}
}

// Do calls op until it succeeds, returns a Fatal error or the retries are
// used up. The last error is returned wrapped.
func (b Backoff) Do(ctx context.Context, op func() error) error {
	limit := b.Max
	if limit <= 0 {
		limit = 30 * time.Second
	}
	sleep := b.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	pause := b.Initial
	for attempt := 1; ; attempt++ {
		err := op()
		switch {
		case err == nil:
			return nil
		case IsFatal(err):
			return err
		case attempt > b.Retries:
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		if sleepErr := sleep(ctx, pause); sleepErr != nil {
			return fmt.Errorf("stopped after %d attempts: %w", attempt, sleepErr)
		}
		pause = min(2*pause, limit)
	}
}

type fatalError struct {
	err error
}

func (e fatalError) Error() string { return e.err.Error() }

func (e fatalError) Unwrap() error { return e.err }

// Fatal marks err as not worth retrying. Fatal(nil) is nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return fatalError{err: err}
}

// IsFatal reports whether err, or anything it wraps, was marked with Fatal.
func IsFatal(err error) bool {
	return errors.As(err, new(fatalError))
}
