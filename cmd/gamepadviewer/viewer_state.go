package main

import "time"

// ViewerState is the top-level, daemon-owned state container.
//
// Only the daemon goroutine touches it: the reducer mutates it in place and
// other goroutines get copies through StateSnapshot or broadcasts.
type ViewerState struct {
	// Config is the effective config. Runtime changes (controller selection,
	// show text) are written back here so SaveConfig persists them.
	Config Config

	// ConfigPath is where SaveConfig/ReloadConfig go by default. May be empty.
	ConfigPath string

	Tracker *Tracker

	// LastFrame is the most recently built frame, for clients that connect
	// between redraws.
	LastFrame *HUDFrame

	// ConfigAt is when Config was last loaded or saved.
	ConfigAt time.Time
}

// NewViewerState builds the initial state from a validated config.
func NewViewerState(cfg Config, configPath string) *ViewerState {
	return &ViewerState{
		Config:     cfg,
		ConfigPath: configPath,
		Tracker:    NewTracker(cfg.TrackerConfig()),
	}
}

// DisplaySettings is what overlays need besides frames.
type DisplaySettings struct {
	ControllerID    int          `json:"controller_id"`
	ShowText        bool         `json:"show_text"`
	ShowElapsedTime bool         `json:"show_elapsed_time"`
	Colors          ColorsConfig `json:"colors"`
}

// Display returns the current display settings.
func (s *ViewerState) Display() DisplaySettings {
	return DisplaySettings{
		ControllerID:    s.Config.Controller.ID,
		ShowText:        s.Config.Display.ShowText,
		ShowElapsedTime: s.Config.Parry.ShowElapsedTime,
		Colors:          s.Config.Display.Colors,
	}
}

// StateSnapshot is a coherent copy of what clients may see.
type StateSnapshot struct {
	Display    DisplaySettings `json:"display"`
	Frame      *HUDFrame       `json:"frame,omitempty"`
	ConfigPath string          `json:"config_path,omitempty"`
}

// Snapshot copies the client-visible parts of the state.
func (s *ViewerState) Snapshot() StateSnapshot {
	snap := StateSnapshot{
		Display:    s.Display(),
		ConfigPath: s.ConfigPath,
	}
	if s.LastFrame != nil {
		f := *s.LastFrame
		snap.Frame = &f
	}
	return snap
}
