package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonTimer_ZeroValueIsIdle(t *testing.T) {
	var bt ButtonTimer
	for _, now := range []ClockValue{0, 1, 5000, math.MaxUint64} {
		assert.False(t, bt.IsRunning())
		assert.Equal(t, ClockValue(0), bt.ElapsedMS(now))
	}
}

func TestButtonTimer_ElapsedSinceStart(t *testing.T) {
	var bt ButtonTimer
	bt.StartTimer(1000)

	require.True(t, bt.IsRunning())
	assert.Equal(t, ClockValue(0), bt.ElapsedMS(1000))
	assert.Equal(t, ClockValue(250), bt.ElapsedMS(1250))
}

func TestButtonTimer_ElapsedAcrossWraparound(t *testing.T) {
	var bt ButtonTimer
	bt.StartTimer(math.MaxUint64 - 5)

	// MAX-5 .. MAX is 5 ticks, MAX -> 0 is one more, then 0 .. 4.
	assert.Equal(t, ClockValue(10), bt.ElapsedMS(4))
}

func TestButtonTimer_QueuedRerunIsRebased(t *testing.T) {
	var bt ButtonTimer
	bt.StartTimer(0)
	bt.StartOrEnqueueTimer(5)

	assert.True(t, bt.IsQueued())
	assert.Equal(t, ClockValue(5), bt.ElapsedMS(5), "enqueue must not restart the run")

	bt.PossiblyExpire(100, 50, 20)

	assert.True(t, bt.IsRunning())
	assert.False(t, bt.IsQueued())
	assert.Equal(t, ClockValue(20), bt.ElapsedMS(100))
}

func TestButtonTimer_ExpiresWithoutQueue(t *testing.T) {
	var bt ButtonTimer
	bt.StartTimer(0)

	bt.PossiblyExpire(100, 50, 20)

	assert.False(t, bt.IsRunning())
	assert.Equal(t, ClockValue(0), bt.ElapsedMS(100))
}

func TestButtonTimer_NotExpiredAtExactDuration(t *testing.T) {
	var bt ButtonTimer
	bt.StartTimer(0)

	bt.PossiblyExpire(50, 50, 0)
	assert.True(t, bt.IsRunning())

	bt.PossiblyExpire(51, 50, 0)
	assert.False(t, bt.IsRunning())
}

func TestButtonTimer_SecondEnqueueIsDropped(t *testing.T) {
	var bt ButtonTimer
	bt.StartTimer(0)
	bt.StartOrEnqueueTimer(10)
	bt.StartOrEnqueueTimer(20)

	// One rerun only: the first expiry consumes it, the second ends the run.
	bt.PossiblyExpire(100, 50, 0)
	require.True(t, bt.IsRunning())
	assert.Equal(t, ClockValue(0), bt.ElapsedMS(100))

	bt.PossiblyExpire(151, 50, 0)
	assert.False(t, bt.IsRunning())
}

func TestButtonTimer_StartOrEnqueueStartsWhenIdle(t *testing.T) {
	var bt ButtonTimer
	bt.StartOrEnqueueTimer(42)

	assert.True(t, bt.IsRunning())
	assert.False(t, bt.IsQueued())
	assert.Equal(t, ClockValue(8), bt.ElapsedMS(50))
}

func TestButtonTimer_PossiblyExpireIgnoresIdleTimer(t *testing.T) {
	var bt ButtonTimer
	bt.PossiblyExpire(1000, 1, 0)
	assert.False(t, bt.IsRunning())
}

func TestButtonTimer_Stop(t *testing.T) {
	var bt ButtonTimer
	bt.StartTimer(0)
	bt.StartOrEnqueueTimer(1)

	bt.Stop()

	assert.False(t, bt.IsRunning())
	assert.False(t, bt.IsQueued())
	assert.Equal(t, ClockValue(0), bt.ElapsedMS(10))
}
