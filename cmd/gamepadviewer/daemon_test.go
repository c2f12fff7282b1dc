package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPoller replays snapshots, then repeats the last one with an
// advancing clock.
type scriptedPoller struct {
	mu     sync.Mutex
	script []ControllerSnapshot
	last   ControllerSnapshot
	ids    []int
}

func (p *scriptedPoller) Poll(id int) ControllerSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
	if len(p.script) > 0 {
		p.last = p.script[0]
		p.script = p.script[1:]
		return p.last
	}
	p.last.PollTimeMS += 16
	return p.last
}

func (p *scriptedPoller) Close() error { return nil }

func (p *scriptedPoller) polledIDs() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.ids...)
}

type daemonHarness struct {
	events     chan Event
	broadcasts chan StateBroadcast
	state      *ViewerState
	poller     *scriptedPoller
	logs       *syncBuffer
	done       chan struct{}
}

// syncBuffer lets the test read logs while the daemon writes them.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startDaemon(t *testing.T, cfg Config, script ...ControllerSnapshot) *daemonHarness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	h := &daemonHarness{
		events:     make(chan Event, 8),
		broadcasts: make(chan StateBroadcast, 256),
		state:      NewViewerState(cfg, ""),
		poller:     &scriptedPoller{script: script},
		logs:       &syncBuffer{},
		done:       make(chan struct{}),
	}
	logger, lv := setupLogger(LogLevelDebug, h.logs)

	go func() {
		defer close(h.done)
		runDaemon(ctx, h.events, h.state, daemonDeps{
			Poller:     h.poller,
			Broadcasts: h.broadcasts,
			LevelVar:   lv,
			Logger:     logger,
		})
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(time.Second):
			t.Error("daemon did not stop")
		}
	})
	return h
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Controller.PollingIntervalMS = 1
	return cfg
}

// nextBroadcast returns the first broadcast matching keep.
func nextBroadcast(t *testing.T, ch <-chan StateBroadcast, keep func(StateBroadcast) bool) StateBroadcast {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case b := <-ch:
			if keep(b) {
				return b
			}
		case <-deadline:
			t.Fatal("timeout waiting for broadcast")
			return nil
		}
	}
}

func TestDaemon_PollsAndStartsParry(t *testing.T) {
	h := startDaemon(t, fastConfig(),
		snap(100, 1),
		withTrigger(snap(116, 2), 255),
	)

	b := nextBroadcast(t, h.broadcasts, func(b StateBroadcast) bool {
		f, ok := b.(BroadcastFrame)
		if !ok {
			return false
		}
		for _, v := range f.Frame.Timers {
			if v.ID == TimerParry && v.Running {
				return true
			}
		}
		return false
	})
	require.NotNil(t, b)

	waitUntil(t, time.Second, func() bool {
		return strings.Contains(h.logs.String(), "timer transition")
	}, "transition not logged")
	assert.Contains(t, h.logs.String(), "controller connection changed")
}

func TestDaemon_ActionsAreReduced(t *testing.T) {
	h := startDaemon(t, fastConfig())

	h.events <- ToggleShowText{}

	b := nextBroadcast(t, h.broadcasts, func(b StateBroadcast) bool {
		_, ok := b.(BroadcastDisplayChanged)
		return ok
	})
	assert.False(t, b.(BroadcastDisplayChanged).Display.ShowText)
}

func TestDaemon_SelectControllerChangesPolledID(t *testing.T) {
	h := startDaemon(t, fastConfig())

	h.events <- SelectController{ID: 3}

	waitUntil(t, time.Second, func() bool {
		ids := h.poller.polledIDs()
		return len(ids) > 0 && ids[len(ids)-1] == 3
	}, "controller 3 never polled")
}

func TestDaemon_AnswersSnapshotRequests(t *testing.T) {
	h := startDaemon(t, fastConfig(), snap(10, 5))

	// Let the first poll land.
	nextBroadcast(t, h.broadcasts, func(b StateBroadcast) bool {
		_, ok := b.(BroadcastFrame)
		return ok
	})

	reply := make(chan StateSnapshot, 1)
	h.events <- RequestStateSnapshot{Reply: reply}

	select {
	case got := <-reply:
		require.NotNil(t, got.Frame)
		assert.Equal(t, uint32(5), got.Frame.PacketNumber)
	case <-time.After(time.Second):
		t.Fatal("no snapshot reply")
	}
}

func TestDaemon_SaveWithoutPathLogsFailure(t *testing.T) {
	h := startDaemon(t, fastConfig())

	h.events <- SaveConfig{}

	waitUntil(t, time.Second, func() bool {
		return strings.Contains(h.logs.String(), "command failed")
	}, "failure not logged")
}

func TestDaemon_StopsWhenEventsClosed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event)
	logger, _ := setupLogger(LogLevelError, &syncBuffer{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		runDaemon(ctx, events, NewViewerState(fastConfig(), ""), daemonDeps{
			Poller: newDisconnectedPoller(),
			Logger: logger,
		})
	}()

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("daemon did not stop")
	}
}
