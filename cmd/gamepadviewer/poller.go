package main

import "time"

// ControllerPoller reads controller state.
//
// Poll never fails: a missing or unreadable controller yields a snapshot with
// Valid=false. PollTimeMS is always set, from the same clock for every call.
type ControllerPoller interface {
	Poll(controllerID int) ControllerSnapshot
	Close() error
}

// tickClock is a monotonic millisecond clock starting at zero.
type tickClock struct {
	start time.Time
}

func newTickClock() tickClock {
	return tickClock{start: time.Now()}
}

func (c tickClock) NowMS() ClockValue {
	return ClockValue(time.Since(c.start).Milliseconds())
}

// disconnectedPoller reports every controller as disconnected. Used where no
// input backend exists, so overlays still get frames and timers still expire.
type disconnectedPoller struct {
	clock tickClock
}

func newDisconnectedPoller() *disconnectedPoller {
	return &disconnectedPoller{clock: newTickClock()}
}

func (p *disconnectedPoller) Poll(int) ControllerSnapshot {
	return ControllerSnapshot{PollTimeMS: p.clock.NowMS()}
}

func (p *disconnectedPoller) Close() error { return nil }
