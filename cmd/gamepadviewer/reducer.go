package main

import "time"

// This file implements the reducer-style architecture building blocks:
//
//   - Events: inputs to the reducer (controller polls, IPC actions, effect results)
//   - Commands: side effects requested by the reducer (config I/O, snapshot replies)
//   - Broadcasts: state changes pushed to overlay clients
//   - Reduce(): computes next state + commands + broadcasts, without performing I/O
//
// The daemon loop is responsible for executing Commands and feeding results back as Events.

// ==============================
// Events
// ==============================

// Event is the input to the reducer.
type Event interface {
	eventMarker()
}

// Tick carries one controller poll. Snapshot.PollTimeMS is the timer clock;
// Now is wall time, used only for broadcast timestamps.
type Tick struct {
	Now      time.Time
	Snapshot ControllerSnapshot
}

func (Tick) eventMarker() {}

// TimedEvent wraps an action with the time the daemon received it.
type TimedEvent struct {
	Event Event
	At    time.Time
}

func (TimedEvent) eventMarker() {}

// RequestStateSnapshot asks the reducer for a StateSnapshot, delivered on Reply.
type RequestStateSnapshot struct {
	Reply chan<- StateSnapshot
}

func (RequestStateSnapshot) eventMarker() {}

// ConfigSaved is emitted after CmdSaveConfig succeeds.
type ConfigSaved struct {
	Path string
	At   time.Time
}

func (ConfigSaved) eventMarker() {}

// ConfigLoaded is emitted after CmdLoadConfig reads and validates a config.
type ConfigLoaded struct {
	Config Config
	Path   string
	At     time.Time
}

func (ConfigLoaded) eventMarker() {}

// CommandFailed is emitted when executing a Command fails.
type CommandFailed struct {
	Command Command
	Err     error
	At      time.Time
}

func (CommandFailed) eventMarker() {}

// ==============================
// Broadcasts
// ==============================

// StateBroadcast is a state change pushed to overlay clients.
type StateBroadcast interface {
	broadcastMarker()
}

// BroadcastFrame carries a freshly built frame.
type BroadcastFrame struct {
	Frame HUDFrame
	At    time.Time
}

func (BroadcastFrame) broadcastMarker() {}

// BroadcastDisplayChanged is emitted when display settings change.
type BroadcastDisplayChanged struct {
	Display DisplaySettings
	At      time.Time
}

func (BroadcastDisplayChanged) broadcastMarker() {}

// ==============================
// Reducer input/output
// ==============================

// ReduceResult is the output of Reduce().
type ReduceResult struct {
	State      *ViewerState
	Commands   []Command
	Broadcasts []StateBroadcast

	// Transitions are timer changes during a Tick, for logging.
	Transitions []TimerTransition
}

// Reduce is the reducer:
//
// Rules:
// - Must not perform I/O
// - Must not block
// - Must not mutate anything outside the returned state
func Reduce(s *ViewerState, e Event) ReduceResult {
	if s == nil {
		s = NewViewerState(DefaultConfig(), "")
	}

	rr := ReduceResult{State: s}

	switch ev := e.(type) {
	case Tick:
		res := s.Tracker.Update(ev.Snapshot)
		rr.Transitions = res.Transitions
		if res.Redraw {
			rr.Broadcasts = append(rr.Broadcasts, redraw(s, ev.Now))
		}

	case TimedEvent:
		reduceAction(s, ev.Event, ev.At, &rr)

	case RequestStateSnapshot:
		rr.Commands = append(rr.Commands, CmdPublishStateSnapshot{
			Reply:    ev.Reply,
			Snapshot: s.Snapshot(),
		})

	case ConfigSaved:
		s.ConfigPath = ev.Path
		s.ConfigAt = ev.At

	case ConfigLoaded:
		applyConfig(s, ev.Config, ev.At, &rr)
		s.ConfigPath = ev.Path
		s.ConfigAt = ev.At

	case CommandFailed:
		// Keep state as-is; the daemon logs the failure.

	default:
		// Unknown event type: no-op.
	}

	return rr
}

func reduceAction(s *ViewerState, a Event, at time.Time, rr *ReduceResult) {
	switch a := a.(type) {
	case SelectController:
		if a.ID < 0 || a.ID == s.Config.Controller.ID {
			return
		}
		s.Config.Controller.ID = a.ID
		// Input from the old controller must not pair with the new one.
		s.Tracker.ClearSnapshots()
		rr.Broadcasts = append(rr.Broadcasts,
			BroadcastDisplayChanged{Display: s.Display(), At: at},
			redraw(s, at),
		)

	case ToggleShowText:
		s.Config.Display.ShowText = !s.Config.Display.ShowText
		rr.Broadcasts = append(rr.Broadcasts,
			BroadcastDisplayChanged{Display: s.Display(), At: at},
			redraw(s, at),
		)

	case ResetTimers:
		s.Tracker.Reset()
		rr.Broadcasts = append(rr.Broadcasts, redraw(s, at))

	case SaveConfig:
		path := a.Path
		if path == "" {
			path = s.ConfigPath
		}
		rr.Commands = append(rr.Commands, CmdSaveConfig{Path: path, Config: s.Config})

	case ReloadConfig:
		rr.Commands = append(rr.Commands, CmdLoadConfig{Path: s.ConfigPath})

	default:
		// GetState is answered by the IPC layer; anything else is ignored.
	}
}

// applyConfig swaps in a new config without disturbing running timers.
func applyConfig(s *ViewerState, cfg Config, at time.Time, rr *ReduceResult) {
	old := s.Config
	s.Config = cfg
	s.Tracker.SetConfig(cfg.TrackerConfig())

	if cfg.Controller.ID != old.Controller.ID {
		s.Tracker.ClearSnapshots()
	}
	if cfg.Logging.Level != old.Logging.Level {
		if lvl, err := parseLogLevel(cfg.Logging.Level); err == nil {
			rr.Commands = append(rr.Commands, CmdSetLogLevel{Level: lvl})
		}
	}
	if cfg.Controller.PollingIntervalMS != old.Controller.PollingIntervalMS {
		rr.Commands = append(rr.Commands, CmdSetPollingInterval{IntervalMS: cfg.Controller.PollingIntervalMS})
	}

	if s.Display() != displayOf(old) {
		rr.Broadcasts = append(rr.Broadcasts, BroadcastDisplayChanged{Display: s.Display(), At: at})
	}
	rr.Broadcasts = append(rr.Broadcasts, redraw(s, at))
}

func displayOf(cfg Config) DisplaySettings {
	return (&ViewerState{Config: cfg}).Display()
}

// redraw builds a frame, records it as the latest, and wraps it for broadcast.
func redraw(s *ViewerState, at time.Time) BroadcastFrame {
	f := BuildFrame(s)
	s.LastFrame = &f
	return BroadcastFrame{Frame: f, At: at}
}
