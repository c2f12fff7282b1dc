package main

import (
	"context"
	"log/slog"
	"time"
)

// ============================================================================
// Central Daemon Loop
// ============================================================================
//
// Rules enforced here:
//   - The reducer performs no I/O and computes: next state + commands + broadcasts.
//   - The daemon loop is the only place that executes side effects.
//   - Effect results are turned into Events and fed back into the reducer.
//   - The controller is polled here, once per tick, so every poll is reduced
//     in order with the actions that arrived around it.
//
// ============================================================================

// daemonDeps bundles the daemon loop's collaborators.
type daemonDeps struct {
	Poller ControllerPoller

	// Broadcasts receives reducer-emitted broadcasts. Sends never block; nil disables.
	Broadcasts chan<- StateBroadcast

	// Overrides are re-applied on top of every reloaded config file.
	Overrides FlagOverrides

	LevelVar *slog.LevelVar
	Logger   *slog.Logger
}

// runDaemon is the main daemon loop that:
//   - Polls the controller on a fixed cadence and reduces each poll as a Tick
//   - Receives Events from IPC and the state server
//   - Executes commands and feeds results back into the reducer
//   - Forwards broadcasts to the WS broadcaster
//
// Shutdown semantics:
//   - Exits when ctx is canceled
//   - Exits cleanly when the events channel is closed
func runDaemon(ctx context.Context, events <-chan Event, state *ViewerState, deps daemonDeps) {
	logger := deps.Logger
	if state == nil {
		logger.Error("viewer state is nil")
		return
	}
	if deps.Poller == nil {
		logger.Error("controller poller is nil")
		return
	}

	interval := time.Duration(state.Config.Controller.PollingIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	env := effectEnv{
		logger:    logger,
		levelVar:  deps.LevelVar,
		overrides: deps.Overrides,
		setPollInterval: func(d time.Duration) {
			ticker.Reset(d)
		},
	}

	// Explicit queues:
	// - eventQueue holds events awaiting reduction
	// - cmdQueue holds commands awaiting execution
	var eventQueue []Event
	var cmdQueue []Command

	enqueueEvent := func(ev Event) {
		eventQueue = append(eventQueue, ev)
	}

	publish := func(bs []StateBroadcast) {
		if deps.Broadcasts == nil {
			return
		}
		for _, b := range bs {
			select {
			case deps.Broadcasts <- b:
			default:
				logger.Debug("broadcast queue full, dropping", "type", broadcastType(b))
			}
		}
	}

	// Reduce all queued events, enqueuing any resulting commands.
	flushEvents := func() {
		for len(eventQueue) > 0 {
			ev := eventQueue[0]
			eventQueue = eventQueue[1:]

			if f, ok := ev.(CommandFailed); ok {
				logger.Warn("command failed", "command", f.Command.String(), "error", f.Err)
			}

			rr := Reduce(state, ev)
			if rr.State != nil {
				state = rr.State
			}
			for _, tr := range rr.Transitions {
				logger.Debug("timer transition", "timer", tr.ID, "kind", tr.Kind, "at_ms", uint64(tr.At))
			}
			cmdQueue = append(cmdQueue, rr.Commands...)
			publish(rr.Broadcasts)
		}
	}

	// Execute all queued commands, enqueuing result events.
	flushCommands := func() {
		for len(cmdQueue) > 0 {
			cmd := cmdQueue[0]
			cmdQueue = cmdQueue[1:]

			runEffect(env, cmd, enqueueEvent)

			// Results should be reduced promptly to keep state coherent.
			flushEvents()
		}
	}

	lastValid := false

	// Main loop
	for {
		select {
		case <-ctx.Done():
			logger.Info("daemon stopping (context canceled)")
			return

		case ev, ok := <-events:
			if !ok {
				logger.Info("daemon stopping (events channel closed)")
				return
			}
			switch ev.(type) {
			case RequestStateSnapshot, Tick:
				enqueueEvent(ev)
			default:
				enqueueEvent(TimedEvent{Event: ev, At: time.Now()})
			}
			flushEvents()
			flushCommands()

		case now := <-ticker.C:
			snap := deps.Poller.Poll(state.Config.Controller.ID)
			if snap.Valid != lastValid {
				lastValid = snap.Valid
				logger.Info("controller connection changed",
					"controller_id", state.Config.Controller.ID, "connected", snap.Valid)
			}
			enqueueEvent(Tick{Now: now, Snapshot: snap})
			flushEvents()
			flushCommands()
		}
	}
}

func broadcastType(b StateBroadcast) string {
	switch b.(type) {
	case BroadcastFrame:
		return "frame"
	case BroadcastDisplayChanged:
		return "display_changed"
	default:
		return "unknown"
	}
}
