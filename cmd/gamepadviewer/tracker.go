package main

// ============================================================================
// Button timer tracker - per-poll edge detection and timer upkeep
// ============================================================================
//
// Per poll, in this order:
//   1. The new snapshot becomes current; the old current becomes previous.
//   2. Every timer is offered the chance to expire, using the new poll time.
//   3. If both snapshots are valid, input edges start or enqueue timers.
//
// Expiry runs before edge detection. A press that lands on the same poll as an
// expiry therefore starts a fresh run rather than chaining; chaining only
// happens through a rerun queued on an earlier poll.
//
// ============================================================================

// TimerID names a tracked effect.
type TimerID string

const (
	TimerParry        TimerID = "parry"
	TimerDodgeRelease TimerID = "dodge_release"
	TimerDodgeInvuln  TimerID = "dodge_invulnerability"
)

// TrackerConfig is the subset of Config the tracker reads.
type TrackerConfig struct {
	Thresholds AnalogThresholdConfig

	// Trigger side (TriggerLeft/TriggerRight) that starts the parry timer.
	ParryTrigger string
	Parry        ButtonTimerConfig

	// Button whose release starts the dodge timers.
	DodgeButton  uint16
	DodgeRelease ButtonTimerConfig
	DodgeInvuln  ButtonTimerConfig
}

// trackedTimer binds a timer to its config and requeue offset.
type trackedTimer struct {
	ID     TimerID
	Timer  ButtonTimer
	Config ButtonTimerConfig

	// Passed to PossiblyExpire; rebases queued reruns.
	QueuedStartMS ClockValue
}

// TransitionKind describes what happened to a timer during a poll.
type TransitionKind string

const (
	TransitionStarted  TransitionKind = "started"
	TransitionEnqueued TransitionKind = "enqueued"
	TransitionRequeued TransitionKind = "requeued"
	TransitionExpired  TransitionKind = "expired"
)

// TimerTransition is reported for logging; it has no effect on state.
type TimerTransition struct {
	ID   TimerID
	Kind TransitionKind
	At   ClockValue
}

// TickResult is the outcome of one Update.
type TickResult struct {
	// Redraw is set when a timer is or was running, or the input changed.
	// Including "was running" guarantees one frame after a timer expires.
	Redraw bool

	Transitions []TimerTransition
}

// Tracker owns the tracked timers and the current/previous snapshot pair.
// It is not safe for concurrent use.
type Tracker struct {
	cfg TrackerConfig

	// Iteration order is fixed so updates and frames are deterministic.
	timers []*trackedTimer
	byID   map[TimerID]*trackedTimer

	cur  ControllerSnapshot
	prev ControllerSnapshot
}

// NewTracker constructs a tracker with all timers stopped.
func NewTracker(cfg TrackerConfig) *Tracker {
	t := &Tracker{byID: make(map[TimerID]*trackedTimer)}
	for _, id := range []TimerID{TimerParry, TimerDodgeRelease, TimerDodgeInvuln} {
		tt := &trackedTimer{ID: id}
		t.timers = append(t.timers, tt)
		t.byID[id] = tt
	}
	t.SetConfig(cfg)
	return t
}

// SetConfig replaces timer configuration without disturbing running timers.
func (t *Tracker) SetConfig(cfg TrackerConfig) {
	t.cfg = cfg
	t.byID[TimerParry].Config = cfg.Parry
	t.byID[TimerDodgeRelease].Config = cfg.DodgeRelease

	// A requeued dodge skips straight to the start of its invulnerability.
	inv := t.byID[TimerDodgeInvuln]
	inv.Config = cfg.DodgeInvuln
	inv.QueuedStartMS = cfg.DodgeInvuln.ActiveStartMS
}

// Timer returns the timer for id, or nil if id is not tracked.
func (t *Tracker) Timer(id TimerID) *ButtonTimer {
	tt, ok := t.byID[id]
	if !ok {
		return nil
	}
	return &tt.Timer
}

// Current returns the most recent snapshot.
func (t *Tracker) Current() ControllerSnapshot { return t.cur }

// Previous returns the snapshot before Current.
func (t *Tracker) Previous() ControllerSnapshot { return t.prev }

// AnyRunning reports whether any tracked timer is running.
func (t *Tracker) AnyRunning() bool {
	for _, tt := range t.timers {
		if tt.Timer.IsRunning() {
			return true
		}
	}
	return false
}

// Reset stops every timer.
func (t *Tracker) Reset() {
	for _, tt := range t.timers {
		tt.Timer.Stop()
	}
}

// ClearSnapshots forgets both snapshots, so the next two polls cannot form an
// edge with input from before the call (e.g. after switching controllers).
func (t *Tracker) ClearSnapshots() {
	t.cur = ControllerSnapshot{}
	t.prev = ControllerSnapshot{}
}

// Update processes one poll.
func (t *Tracker) Update(snap ControllerSnapshot) TickResult {
	wasRunning := t.AnyRunning()

	t.prev = t.cur
	t.cur = snap
	now := snap.PollTimeMS

	var res TickResult

	for _, tt := range t.timers {
		running, queued := tt.Timer.IsRunning(), tt.Timer.IsQueued()
		tt.Timer.PossiblyExpire(now, tt.Config.DurationMS, tt.QueuedStartMS)

		switch {
		case running && !tt.Timer.IsRunning():
			res.Transitions = append(res.Transitions, TimerTransition{ID: tt.ID, Kind: TransitionExpired, At: now})
		case queued && !tt.Timer.IsQueued():
			res.Transitions = append(res.Transitions, TimerTransition{ID: tt.ID, Kind: TransitionRequeued, At: now})
		}
	}

	// Unreliable input cannot produce edges.
	if t.cur.Valid && t.prev.Valid {
		res.Transitions = t.detectEdges(now, res.Transitions)
	}

	res.Redraw = wasRunning ||
		t.AnyRunning() ||
		t.cur.PacketNumber != t.prev.PacketNumber ||
		t.cur.Valid != t.prev.Valid

	return res
}

func (t *Tracker) detectEdges(now ClockValue, out []TimerTransition) []TimerTransition {
	th := t.cfg.Thresholds

	parry := t.byID[TimerParry]
	parryDown := t.cur.IsTriggerPressed(th, t.cfg.ParryTrigger)
	parryWasDown := t.prev.IsTriggerPressed(th, t.cfg.ParryTrigger)
	if parryDown && !parryWasDown && !parry.Timer.IsRunning() && enabled(parry) {
		parry.Timer.StartTimer(now)
		out = append(out, TimerTransition{ID: parry.ID, Kind: TransitionStarted, At: now})
	}

	mask := t.cfg.DodgeButton
	if t.prev.IsButtonPressed(mask) && !t.cur.IsButtonPressed(mask) {
		release := t.byID[TimerDodgeRelease]
		if !release.Timer.IsRunning() && enabled(release) {
			release.Timer.StartTimer(now)
			out = append(out, TimerTransition{ID: release.ID, Kind: TransitionStarted, At: now})
		}

		inv := t.byID[TimerDodgeInvuln]
		if enabled(inv) {
			running, queued := inv.Timer.IsRunning(), inv.Timer.IsQueued()
			inv.Timer.StartOrEnqueueTimer(now)
			switch {
			case !running:
				out = append(out, TimerTransition{ID: inv.ID, Kind: TransitionStarted, At: now})
			case !queued:
				out = append(out, TimerTransition{ID: inv.ID, Kind: TransitionEnqueued, At: now})
			}
		}
	}

	return out
}

// enabled reports whether the timer has a non-zero duration.
func enabled(tt *trackedTimer) bool {
	return tt.Config.DurationMS > 0
}
