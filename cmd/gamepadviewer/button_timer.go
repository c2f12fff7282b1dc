package main

// ClockValue is a millisecond tick count from an arbitrary epoch.
//
// Elapsed times are always computed as `now - start` with unsigned
// arithmetic, so a counter that wraps between the two readings still yields
// the correct small difference.
type ClockValue uint64

// ButtonTimer tracks one timed effect started by a button press.
//
// "Running" is deliberately not called "active": active refers to the part of
// the run during which the in-game action succeeds (see ButtonTimerConfig).
//
// A ButtonTimer is owned by a single goroutine; it has no locking.
type ButtonTimer struct {
	running bool

	// Only meaningful while running.
	startMS ClockValue

	// Another run was requested while this one was in progress. Implies running.
	queued bool
}

func (t *ButtonTimer) IsRunning() bool { return t.running }

// IsQueued reports whether another run is waiting for the current one to expire.
func (t *ButtonTimer) IsQueued() bool { return t.queued }

// StartTimer (re)starts the timer at now.
func (t *ButtonTimer) StartTimer(now ClockValue) {
	t.running = true
	t.startMS = now
}

// StartOrEnqueueTimer starts the timer if idle. Otherwise it records a single
// pending rerun; further requests while one is pending are dropped.
func (t *ButtonTimer) StartOrEnqueueTimer(now ClockValue) {
	if !t.running {
		t.StartTimer(now)
		return
	}
	t.queued = true
}

// PossiblyExpire ends the run once more than maxDurationMS has elapsed.
//
// If a rerun is pending, the timer keeps running instead and is rebased so the
// new run appears to have started queuedStartMS before now. That skips the
// part of the run that models the game's input lag.
func (t *ButtonTimer) PossiblyExpire(now, maxDurationMS, queuedStartMS ClockValue) {
	if !t.running {
		return
	}
	if t.ElapsedMS(now) <= maxDurationMS {
		return
	}
	if !t.queued {
		t.running = false
		return
	}
	t.queued = false
	t.startMS = now - queuedStartMS
}

// ElapsedMS is the time since the run started, or 0 when not running.
func (t *ButtonTimer) ElapsedMS(now ClockValue) ClockValue {
	if !t.running {
		return 0
	}
	return now - t.startMS
}

// Stop discards any run in progress and any pending rerun.
func (t *ButtonTimer) Stop() {
	t.running = false
	t.queued = false
	t.startMS = 0
}
