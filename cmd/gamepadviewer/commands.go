package main

import "fmt"

// ==============================
// Commands (side effects)
// ==============================

// Command represents an external side effect to be executed by the daemon loop.
type Command interface {
	commandMarker()
	String() string
}

// CmdSaveConfig writes Config to Path.
type CmdSaveConfig struct {
	Path   string
	Config Config
}

func (CmdSaveConfig) commandMarker() {}
func (c CmdSaveConfig) String() string {
	return fmt.Sprintf("CmdSaveConfig(path=%q)", c.Path)
}

// CmdLoadConfig reads and validates the config at Path.
type CmdLoadConfig struct {
	Path string
}

func (CmdLoadConfig) commandMarker() {}
func (c CmdLoadConfig) String() string {
	return fmt.Sprintf("CmdLoadConfig(path=%q)", c.Path)
}

// CmdSetLogLevel changes the daemon's log level.
type CmdSetLogLevel struct {
	Level LogLevel
}

func (CmdSetLogLevel) commandMarker() {}
func (c CmdSetLogLevel) String() string {
	return fmt.Sprintf("CmdSetLogLevel(level=%s)", c.Level)
}

// CmdSetPollingInterval retimes the daemon's poll ticker.
type CmdSetPollingInterval struct {
	IntervalMS int
}

func (CmdSetPollingInterval) commandMarker() {}
func (c CmdSetPollingInterval) String() string {
	return fmt.Sprintf("CmdSetPollingInterval(interval_ms=%d)", c.IntervalMS)
}

// CmdPublishStateSnapshot delivers a reducer-built snapshot to a requester.
type CmdPublishStateSnapshot struct {
	Reply    chan<- StateSnapshot
	Snapshot StateSnapshot
}

func (CmdPublishStateSnapshot) commandMarker() {}
func (CmdPublishStateSnapshot) String() string { return "CmdPublishStateSnapshot()" }
