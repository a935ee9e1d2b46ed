package fetchcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaner(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := New(Config[string]{
		DefaultTTL:    20 * time.Millisecond,
		CleanInterval: 10 * time.Millisecond,
		Fetcher:       countingFetcher(&calls),
	})
	defer c.StopCleaner()

	_, err := c.Get(context.Background(), "k", nil)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, 5*time.Second, time.Millisecond, "expected the cleaner to sweep the expired entry")
}

func TestStartCleanerRestarts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := New(Config[string]{
		DefaultTTL: 20 * time.Millisecond,
		Fetcher:    countingFetcher(&calls),
	})
	defer c.StopCleaner()

	// effectively never ticks
	c.StartCleaner(time.Hour)

	_, err := c.Get(context.Background(), "k", nil)
	require.NoError(t, err)

	c.StartCleaner(10 * time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, 5*time.Second, time.Millisecond, "expected the restarted cleaner to sweep with the new interval")
}

func TestStopCleaner(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	clk := newTestClock()
	c := New(Config[string]{
		DefaultTTL: 20 * time.Millisecond,
		Fetcher:    countingFetcher(&calls),
	})
	c.nowFunc = clk.Now

	// stopping without a running cleaner is a no-op
	c.StopCleaner()

	c.StartCleaner(time.Hour)
	c.StopCleaner()
	c.StopCleaner()

	_, err := c.Get(context.Background(), "k", nil)
	require.NoError(t, err)

	clk.Advance(time.Minute)
	time.Sleep(50 * time.Millisecond)

	// expired but nothing sweeps it anymore
	assert.Equal(t, 1, c.Len())
}

func TestStartCleanerWithoutInterval(t *testing.T) {
	t.Parallel()

	c := New(Config[string]{})

	// no per-call interval and no configured one: nothing to start
	c.StartCleaner(0)
	c.StopCleaner()
}
