package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier(maxAttempts int) *Retrier {
	return New(Config{
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	})
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastRetrier(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := fastRetrier(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	boom := errors.New("bad request")
	err := fastRetrier(5).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(boom)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDo_PlainErrorsNotRetriedByDefault(t *testing.T) {
	calls := 0
	err := fastRetrier(5).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("plain")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	transient := errors.New("still down")
	err := fastRetrier(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Retryable(transient)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fastRetrier(3).Do(ctx, func(ctx context.Context) error {
		return Retryable(errors.New("transient"))
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_RetryIfOverridesDefault(t *testing.T) {
	calls := 0
	r := New(Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return true },
	})

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("plain but retried")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
