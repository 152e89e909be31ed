package facilityapi

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), func() (string, error) {
		calls++
		if calls <= 2 {
			return "", fmt.Errorf("failure %d", calls)
		}
		return "ok", nil
	}, 3, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsLastErrorAfterAllAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), func() (int, error) {
		calls++
		return 0, fmt.Errorf("failure %d", calls)
	}, 3, time.Millisecond)

	assert.Equal(t, 4, calls)
	assert.EqualError(t, err, "failure 4")
}

func TestRetryWithNoRetriesCallsOnce(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("no")
	}, 0, time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryDelaysDouble(t *testing.T) {
	var times []time.Time
	_, _ = Retry(context.Background(), func() (int, error) {
		times = append(times, time.Now())
		return 0, errors.New("no")
	}, 2, time.Millisecond*50)

	require.Len(t, times, 3)
	first, second := times[1].Sub(times[0]), times[2].Sub(times[1])
	assert.GreaterOrEqual(t, first, time.Millisecond*50)
	assert.GreaterOrEqual(t, second, time.Millisecond*100)
}

func TestRetryStopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("no")
	}, 5, time.Second)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestAwaitCondition(t *testing.T) {
	n := 0
	err := AwaitCondition(context.Background(), func() bool {
		n++
		return n == 3
	}, time.Second, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	err = AwaitCondition(context.Background(), func() bool { return false }, time.Millisecond*50, time.Millisecond*10)
	assert.Error(t, err)
}
