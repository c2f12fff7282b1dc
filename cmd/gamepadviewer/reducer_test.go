package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *ViewerState {
	t.Helper()
	return NewViewerState(DefaultConfig(), "/tmp/gpv-test.yaml")
}

func frames(rr ReduceResult) []BroadcastFrame {
	var out []BroadcastFrame
	for _, b := range rr.Broadcasts {
		if f, ok := b.(BroadcastFrame); ok {
			out = append(out, f)
		}
	}
	return out
}

func displayChanges(rr ReduceResult) []BroadcastDisplayChanged {
	var out []BroadcastDisplayChanged
	for _, b := range rr.Broadcasts {
		if d, ok := b.(BroadcastDisplayChanged); ok {
			out = append(out, d)
		}
	}
	return out
}

func TestReduce_TickBroadcastsFrameOnRedraw(t *testing.T) {
	s := newTestState(t)
	now := time.Unix(100, 0)

	rr := Reduce(s, Tick{Now: now, Snapshot: snap(10, 1)})

	fs := frames(rr)
	require.Len(t, fs, 1)
	assert.Equal(t, now, fs[0].At)
	assert.Equal(t, uint32(1), fs[0].Frame.PacketNumber)
	require.NotNil(t, s.LastFrame)
	assert.Equal(t, fs[0].Frame, *s.LastFrame)

	// Idle and unchanged: nothing to draw.
	rr = Reduce(s, Tick{Now: now, Snapshot: snap(26, 1)})
	assert.Empty(t, rr.Broadcasts)
}

func TestReduce_TickReportsTransitions(t *testing.T) {
	s := newTestState(t)

	Reduce(s, Tick{Snapshot: snap(0, 1)})
	rr := Reduce(s, Tick{Snapshot: withTrigger(snap(16, 2), 255)})

	require.Len(t, rr.Transitions, 1)
	assert.Equal(t, TimerTransition{ID: TimerParry, Kind: TransitionStarted, At: 16}, rr.Transitions[0])
}

func TestReduce_SelectController(t *testing.T) {
	s := newTestState(t)
	at := time.Unix(5, 0)

	Reduce(s, Tick{Snapshot: withButtons(snap(0, 1), ButtonB)})
	rr := Reduce(s, TimedEvent{Event: SelectController{ID: 1}, At: at})

	assert.Equal(t, 1, s.Config.Controller.ID)
	assert.False(t, s.Tracker.Current().Valid, "snapshots must be cleared")

	ds := displayChanges(rr)
	require.Len(t, ds, 1)
	assert.Equal(t, 1, ds[0].Display.ControllerID)
	assert.Len(t, frames(rr), 1)

	// Released on the new controller: no edge against the old one's press.
	Reduce(s, Tick{Snapshot: snap(16, 1)})
	assert.False(t, s.Tracker.Timer(TimerDodgeInvuln).IsRunning())
}

func TestReduce_SelectSameControllerIsNoop(t *testing.T) {
	s := newTestState(t)

	rr := Reduce(s, TimedEvent{Event: SelectController{ID: 0}})
	assert.Empty(t, rr.Broadcasts)

	rr = Reduce(s, TimedEvent{Event: SelectController{ID: -3}})
	assert.Empty(t, rr.Broadcasts)
	assert.Equal(t, 0, s.Config.Controller.ID)
}

func TestReduce_ToggleShowText(t *testing.T) {
	s := newTestState(t)
	require.True(t, s.Config.Display.ShowText)

	rr := Reduce(s, TimedEvent{Event: ToggleShowText{}})

	assert.False(t, s.Config.Display.ShowText)
	ds := displayChanges(rr)
	require.Len(t, ds, 1)
	assert.False(t, ds[0].Display.ShowText)
	fs := frames(rr)
	require.Len(t, fs, 1)
	assert.False(t, fs[0].Frame.ShowText)
}

func TestReduce_ResetTimers(t *testing.T) {
	s := newTestState(t)

	Reduce(s, Tick{Snapshot: snap(0, 1)})
	Reduce(s, Tick{Snapshot: withTrigger(snap(16, 2), 255)})
	require.True(t, s.Tracker.AnyRunning())

	rr := Reduce(s, TimedEvent{Event: ResetTimers{}})

	assert.False(t, s.Tracker.AnyRunning())
	fs := frames(rr)
	require.Len(t, fs, 1)
	for _, v := range fs[0].Frame.Timers {
		assert.False(t, v.Running, v.ID)
	}
}

func TestReduce_SaveConfig(t *testing.T) {
	s := newTestState(t)
	s.Config.Controller.ID = 2

	rr := Reduce(s, TimedEvent{Event: SaveConfig{}})
	require.Len(t, rr.Commands, 1)
	cmd, ok := rr.Commands[0].(CmdSaveConfig)
	require.True(t, ok)
	assert.Equal(t, "/tmp/gpv-test.yaml", cmd.Path)
	assert.Equal(t, 2, cmd.Config.Controller.ID)

	rr = Reduce(s, TimedEvent{Event: SaveConfig{Path: "/tmp/other.toml"}})
	require.Len(t, rr.Commands, 1)
	assert.Equal(t, "/tmp/other.toml", rr.Commands[0].(CmdSaveConfig).Path)
}

func TestReduce_ReloadConfig(t *testing.T) {
	s := newTestState(t)

	rr := Reduce(s, TimedEvent{Event: ReloadConfig{}})
	require.Len(t, rr.Commands, 1)
	assert.Equal(t, CmdLoadConfig{Path: "/tmp/gpv-test.yaml"}, rr.Commands[0])
}

func TestReduce_RequestStateSnapshot(t *testing.T) {
	s := newTestState(t)
	Reduce(s, Tick{Snapshot: snap(0, 1)})

	reply := make(chan StateSnapshot, 1)
	rr := Reduce(s, RequestStateSnapshot{Reply: reply})

	require.Len(t, rr.Commands, 1)
	cmd, ok := rr.Commands[0].(CmdPublishStateSnapshot)
	require.True(t, ok)
	require.NotNil(t, cmd.Snapshot.Frame)
	assert.Equal(t, uint32(1), cmd.Snapshot.Frame.PacketNumber)
	assert.Equal(t, "/tmp/gpv-test.yaml", cmd.Snapshot.ConfigPath)

	// The snapshot is a copy, not a view of LastFrame.
	assert.NotSame(t, s.LastFrame, cmd.Snapshot.Frame)
}

func TestReduce_ConfigSaved(t *testing.T) {
	s := newTestState(t)
	at := time.Unix(42, 0)

	Reduce(s, ConfigSaved{Path: "/tmp/new.json", At: at})

	assert.Equal(t, "/tmp/new.json", s.ConfigPath)
	assert.Equal(t, at, s.ConfigAt)
}

func TestReduce_ConfigLoadedEmitsRuntimeCommands(t *testing.T) {
	s := newTestState(t)

	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Controller.PollingIntervalMS = 8
	cfg.Display.Colors.Highlight = "#0000ff"

	rr := Reduce(s, ConfigLoaded{Config: cfg, Path: "/tmp/gpv-test.yaml"})

	assert.Contains(t, rr.Commands, Command(CmdSetLogLevel{Level: LogLevelDebug}))
	assert.Contains(t, rr.Commands, Command(CmdSetPollingInterval{IntervalMS: 8}))

	ds := displayChanges(rr)
	require.Len(t, ds, 1)
	assert.Equal(t, "#0000ff", ds[0].Display.Colors.Highlight)
	assert.Len(t, frames(rr), 1)
}

func TestReduce_ConfigLoadedKeepsRunningTimers(t *testing.T) {
	s := newTestState(t)

	Reduce(s, Tick{Snapshot: snap(0, 1)})
	Reduce(s, Tick{Snapshot: withTrigger(snap(16, 2), 255)})

	rr := Reduce(s, ConfigLoaded{Config: DefaultConfig(), Path: s.ConfigPath})

	assert.True(t, s.Tracker.Timer(TimerParry).IsRunning())
	assert.Empty(t, rr.Commands, "nothing runtime-relevant changed")
	assert.Empty(t, displayChanges(rr))
}

func TestReduce_ConfigLoadedNewControllerClearsSnapshots(t *testing.T) {
	s := newTestState(t)
	Reduce(s, Tick{Snapshot: snap(0, 1)})

	cfg := DefaultConfig()
	cfg.Controller.ID = 3
	Reduce(s, ConfigLoaded{Config: cfg})

	assert.False(t, s.Tracker.Current().Valid)
}

func TestReduce_CommandFailedIsNoop(t *testing.T) {
	s := newTestState(t)
	rr := Reduce(s, CommandFailed{Command: CmdLoadConfig{}, Err: errNoConfigPath{}})

	assert.Empty(t, rr.Commands)
	assert.Empty(t, rr.Broadcasts)
}

func TestReduce_NilStateUsesDefaults(t *testing.T) {
	rr := Reduce(nil, TimedEvent{Event: ToggleShowText{}})
	require.NotNil(t, rr.State)
	assert.False(t, rr.State.Config.Display.ShowText)
}
