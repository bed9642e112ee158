package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSleeper records requested pauses without waiting.
type countingSleeper struct {
	calls []time.Duration
}

func (s *countingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return ctx.Err()
}

func TestPolicy_PollReturnsOnFirstDone(t *testing.T) {
	t.Parallel()
	sleeper := &countingSleeper{}
	p := Policy{Interval: time.Minute, Sleep: sleeper.sleep}

	calls := 0
	err := p.Poll(context.Background(), func(_ context.Context, _ int) (bool, error) {
		calls++
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.calls)
}

func TestPolicy_PollSleepsOncePerNotDone(t *testing.T) {
	t.Parallel()
	sleeper := &countingSleeper{}
	p := Policy{Interval: time.Minute, Sleep: sleeper.sleep}

	err := p.Poll(context.Background(), func(_ context.Context, attempt int) (bool, error) {
		return attempt == 5, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Minute, time.Minute, time.Minute, time.Minute}, sleeper.calls)
}

func TestPolicy_TransientErrorsAreRetried(t *testing.T) {
	t.Parallel()
	sleeper := &countingSleeper{}
	p := Policy{Interval: time.Second, Sleep: sleeper.sleep}

	err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		if attempt < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, sleeper.calls, 2)
}

func TestPolicy_FatalStopsImmediately(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("rejected")
	sleeper := &countingSleeper{}
	p := Policy{Interval: time.Second, Sleep: sleeper.sleep}

	attempts := 0
	err := p.Do(context.Background(), func(_ context.Context, _ int) error {
		attempts++
		return Fatal(sentinel)
	})

	require.ErrorIs(t, err, sentinel)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeper.calls)
}

func TestPolicy_MaxAttempts(t *testing.T) {
	t.Parallel()
	sleeper := &countingSleeper{}
	p := Policy{Interval: time.Second, MaxAttempts: 3, Sleep: sleeper.sleep}
	last := errors.New("still down")

	attempts := 0
	err := p.Do(context.Background(), func(_ context.Context, _ int) error {
		attempts++
		return last
	})

	require.ErrorIs(t, err, ErrAttemptsExhausted)
	require.ErrorIs(t, err, last)
	assert.Equal(t, 3, attempts)
	assert.Len(t, sleeper.calls, 2)
}

func TestPolicy_CancelledBeforeSleep(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	sleeper := &countingSleeper{}
	p := Policy{Interval: time.Minute, Sleep: sleeper.sleep}

	err := p.Poll(ctx, func(_ context.Context, _ int) (bool, error) {
		cancel()
		return false, nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sleeper.calls)
}

func TestPolicy_DeadlineUsesRealSleep(t *testing.T) {
	t.Parallel()
	p := Policy{Interval: 5 * time.Millisecond, Deadline: 30 * time.Millisecond}

	err := p.Poll(context.Background(), func(_ context.Context, _ int) (bool, error) {
		return false, nil
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPolicy_Unbounded(t *testing.T) {
	t.Parallel()
	assert.True(t, Forever(time.Minute).Unbounded())
	assert.False(t, Policy{MaxAttempts: 2}.Unbounded())
	assert.False(t, Policy{Deadline: time.Hour}.Unbounded())
}

func TestSleep_HonoursContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
