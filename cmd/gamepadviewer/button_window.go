package main

import "fmt"

// ButtonTimerConfig describes one timed effect.
//
// Expected: 0 <= ActiveStartMS <= ActiveEndMS <= DurationMS. Config.Validate
// enforces this at load time; the functions here do not check it.
type ButtonTimerConfig struct {
	// Duration of the timer. Zero disables the timer.
	DurationMS ClockValue `yaml:"duration_ms" json:"duration_ms" toml:"duration_ms"`

	// If elapsed time is in [start,end], the effect is active.
	ActiveStartMS ClockValue `yaml:"active_start_ms" json:"active_start_ms" toml:"active_start_ms"`
	ActiveEndMS   ClockValue `yaml:"active_end_ms" json:"active_end_ms" toml:"active_end_ms"`

	// Number of segments in the meter drawn by overlays.
	NumSegments int `yaml:"num_segments" json:"num_segments" toml:"num_segments"`
}

// ButtonWindowState classifies an elapsed time against the active window.
type ButtonWindowState int

const (
	WindowBefore ButtonWindowState = iota
	WindowActive
	WindowAfter
)

func (s ButtonWindowState) String() string {
	switch s {
	case WindowBefore:
		return "before"
	case WindowActive:
		return "active"
	case WindowAfter:
		return "after"
	default:
		return fmt.Sprintf("ButtonWindowState(%d)", int(s))
	}
}

// ButtonWindow is the result of classifying an elapsed time.
//
// Frames is the distance in frames to the window (BEFORE/AFTER), or the
// 1-based frame within the window (ACTIVE). MaxFrame is only set for ACTIVE.
type ButtonWindow struct {
	State    ButtonWindowState
	Frames   int
	MaxFrame int
}

// msToFrames converts a duration to frames, rounding up. Zero counts as one
// frame: "0 frames early" is not something worth showing a player.
func msToFrames(ms ClockValue) int {
	if ms == 0 {
		ms = 1
	}
	return int((ms*classifierFPS + 999) / 1000)
}

// classifyButtonWindow places elapsedMS relative to the closed interval
// [ActiveStartMS, ActiveEndMS].
func classifyButtonWindow(cfg ButtonTimerConfig, elapsedMS ClockValue) ButtonWindow {
	switch {
	case elapsedMS < cfg.ActiveStartMS:
		return ButtonWindow{
			State:  WindowBefore,
			Frames: msToFrames(cfg.ActiveStartMS - elapsedMS),
		}

	case elapsedMS > cfg.ActiveEndMS:
		return ButtonWindow{
			State:  WindowAfter,
			Frames: msToFrames(elapsedMS - cfg.ActiveEndMS),
		}

	default:
		return ButtonWindow{
			State:    WindowActive,
			Frames:   msToFrames(elapsedMS - cfg.ActiveStartMS),
			MaxFrame: msToFrames(cfg.ActiveEndMS - cfg.ActiveStartMS),
		}
	}
}

// isButtonActive reports whether elapsedMS falls inside the active window.
func isButtonActive(cfg ButtonTimerConfig, elapsedMS ClockValue) bool {
	return classifyButtonWindow(cfg, elapsedMS).State == WindowActive
}

// parryAccuracyString describes how well a parry press lines up with an
// attack landing now. Before the window opens the press was too late for the
// attack; after it closes the press was too early.
func parryAccuracyString(cfg ButtonTimerConfig, elapsedMS ClockValue) string {
	w := classifyButtonWindow(cfg, elapsedMS)
	switch w.State {
	case WindowBefore:
		return fmt.Sprintf("%d late", w.Frames)
	case WindowAfter:
		return fmt.Sprintf("%d early", w.Frames)
	default:
		return fmt.Sprintf("%d of %d", w.Frames, w.MaxFrame)
	}
}

// dodgeAccuracyString describes where a dodge is relative to its
// invulnerability window: "L n" before it, "R n" in recovery, "n/m" inside.
// A trailing "+" means another dodge is queued behind this one.
func dodgeAccuracyString(cfg ButtonTimerConfig, elapsedMS ClockValue, queued bool) (string, bool) {
	w := classifyButtonWindow(cfg, elapsedMS)

	var s string
	switch w.State {
	case WindowBefore:
		s = fmt.Sprintf("L %d", w.Frames)
	case WindowAfter:
		s = fmt.Sprintf("R %d", w.Frames)
	default:
		s = fmt.Sprintf("%d/%d", w.Frames, w.MaxFrame)
	}

	if queued {
		s += "+"
	}
	return s, w.State == WindowActive
}
