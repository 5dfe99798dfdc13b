package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestClockNow(t *testing.T) {
	now := time.Date(2024, time.January, 1, 12, 30, 0, 0, time.UTC)
	c := NewTestClockAt(now)
	assert.Equal(t, now, c.Now())

	c.FastForward(90 * time.Minute)
	assert.Equal(t, now.Add(90*time.Minute), c.Now())
}

func TestTestClockAfterFunc(t *testing.T) {
	c := NewTestClock()

	var fired []string
	c.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "b") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })

	c.FastForward(50 * time.Millisecond)
	assert.Empty(t, fired)

	c.FastForward(200 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, fired)
}

func TestTestClockStop(t *testing.T) {
	c := NewTestClock()

	fired := false
	timer := c.AfterFunc(100*time.Millisecond, func() { fired = true })
	require.True(t, timer.Stop())

	c.FastForward(time.Second)
	assert.False(t, fired)

	// Stopping twice is a no-op
	assert.False(t, timer.Stop())
}

func TestTestClockReset(t *testing.T) {
	c := NewTestClock()

	count := 0
	timer := c.AfterFunc(100*time.Millisecond, func() { count++ })

	// A reset before the deadline postpones the callback
	c.FastForward(50 * time.Millisecond)
	timer.Reset(100 * time.Millisecond)
	c.FastForward(60 * time.Millisecond)
	assert.Equal(t, 0, count)
	c.FastForward(50 * time.Millisecond)
	assert.Equal(t, 1, count)

	// A reset after firing rearms the timer
	timer.Reset(100 * time.Millisecond)
	c.FastForward(100 * time.Millisecond)
	assert.Equal(t, 2, count)
}

func TestFreeze(t *testing.T) {
	defer Unfreeze()

	testClock := Freeze()
	before := Now()
	testClock.FastForward(time.Hour)
	assert.Equal(t, time.Hour, Now().Sub(before))
}
