package main

import (
	"fmt"
	"log/slog"
	"time"
)

// effectEnv holds what side effects may touch besides the filesystem.
type effectEnv struct {
	logger   *slog.Logger
	levelVar *slog.LevelVar

	// overrides are the startup flags, re-applied on every reload.
	overrides FlagOverrides

	// setPollInterval retimes the daemon ticker. May be nil.
	setPollInterval func(time.Duration)
}

// runEffect executes a single reducer-emitted Command and emits a result
// Event via onEvent.
//
// It must never call Reduce() directly; the daemon loop sequences
// Reduce -> Commands -> runEffect -> Events -> Reduce.
func runEffect(env effectEnv, cmd Command, onEvent func(Event)) {
	if onEvent == nil {
		return
	}

	logger := env.logger
	now := time.Now()

	switch c := cmd.(type) {
	case CmdSaveConfig:
		if c.Path == "" {
			onEvent(CommandFailed{Command: cmd, Err: errNoConfigPath{}, At: now})
			return
		}
		if err := SaveConfigFile(c.Path, c.Config); err != nil {
			logger.Error("config save failed", "error", err, "path", c.Path)
			onEvent(CommandFailed{Command: cmd, Err: err, At: now})
			return
		}
		logger.Info("config saved", "path", c.Path)
		onEvent(ConfigSaved{Path: c.Path, At: now})

	case CmdLoadConfig:
		if c.Path == "" {
			onEvent(CommandFailed{Command: cmd, Err: errNoConfigPath{}, At: now})
			return
		}
		cfg, err := LoadConfigFile(c.Path)
		if err == nil {
			env.overrides.Apply(&cfg)
			err = cfg.Validate()
		}
		if err != nil {
			logger.Error("config reload failed", "error", err, "path", c.Path)
			onEvent(CommandFailed{Command: cmd, Err: err, At: now})
			return
		}
		logger.Info("config reloaded", "path", c.Path)
		onEvent(ConfigLoaded{Config: cfg, Path: c.Path, At: now})

	case CmdSetLogLevel:
		if env.levelVar != nil {
			env.levelVar.Set(c.Level.slogLevel())
		}
		logger.Info("log level changed", "level", c.Level)

	case CmdSetPollingInterval:
		if c.IntervalMS <= 0 {
			onEvent(CommandFailed{Command: cmd, Err: errBadInterval{ms: c.IntervalMS}, At: now})
			return
		}
		if env.setPollInterval != nil {
			env.setPollInterval(time.Duration(c.IntervalMS) * time.Millisecond)
		}
		logger.Info("polling interval changed", "interval_ms", c.IntervalMS)

	case CmdPublishStateSnapshot:
		// Keeps the reducer pure by moving the channel send into the effects layer.
		if c.Reply == nil {
			logger.Warn("state snapshot requested with nil reply channel")
			return
		}

		// Never block the daemon loop.
		select {
		case c.Reply <- c.Snapshot:
		default:
			logger.Warn("state snapshot reply channel not ready; dropping snapshot")
		}

	default:
		logger.Warn("unknown command type", "command", cmd.String())
		onEvent(CommandFailed{
			Command: cmd,
			Err:     errUnknownCommand{cmd: cmd},
			At:      now,
		})
	}
}

// errNoConfigPath indicates a save/reload without a config file to use.
type errNoConfigPath struct{}

func (errNoConfigPath) Error() string { return "no config file path (start with -config or pass a path)" }

type errBadInterval struct {
	ms int
}

func (e errBadInterval) Error() string { return fmt.Sprintf("invalid polling interval: %d ms", e.ms) }

type errUnknownCommand struct {
	cmd Command
}

func (e errUnknownCommand) Error() string { return "unknown command: " + e.cmd.String() }
