package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// renderer keeps the latest display settings and frame and draws them as text.
type renderer struct {
	color bool

	display displaySettings
	frame   *hudFrame
}

// handle folds one state message into the renderer.
func (r *renderer) handle(message []byte) error {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "state_init":
		var snap stateSnapshot
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			return fmt.Errorf("unmarshal state_init: %w", err)
		}
		r.display = snap.Display
		r.frame = snap.Frame

	case "frame":
		var f hudFrame
		if err := json.Unmarshal(env.Data, &f); err != nil {
			return fmt.Errorf("unmarshal frame: %w", err)
		}
		r.frame = &f

	case "display_changed":
		var d displaySettings
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fmt.Errorf("unmarshal display_changed: %w", err)
		}
		r.display = d

	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}
	return nil
}

var timerLabels = map[string]string{
	"parry":                 "parry",
	"dodge_release":         "release",
	"dodge_invulnerability": "dodge",
}

const (
	labelWidth      = 9
	defaultMeterLen = 20
)

// render draws the HUD for a terminal width columns wide.
func (r *renderer) render(width int) string {
	var b strings.Builder

	f := r.frame
	if f == nil {
		b.WriteString("waiting for controller state...\n")
		return b.String()
	}

	status := r.paint(r.display.Colors.Highlight, "disconnected")
	if f.Valid {
		status = "connected"
	}
	fmt.Fprintf(&b, "controller %d  %s  packet %d\n", f.ControllerID, status, f.PacketNumber)

	buttons := "-"
	if len(f.Buttons) > 0 {
		buttons = strings.Join(f.Buttons, " ")
	}
	fmt.Fprintf(&b, "buttons  %s\n", buttons)

	fmt.Fprintf(&b, "LT %s  RT %s\n",
		r.trigger(f.LeftTrigger, f.LeftTriggerPressed),
		r.trigger(f.RightTrigger, f.RightTriggerPressed))

	right := "idle"
	if f.RightStickActive {
		right = "active"
	}
	fmt.Fprintf(&b, "left stick %s  right stick %s\n\n", f.LeftStick, right)

	showText := r.display.ShowText && f.ShowText
	for _, t := range f.Timers {
		label := timerLabels[t.ID]
		if label == "" {
			label = t.ID
		}
		line := fmt.Sprintf("%-*s %s", labelWidth, label, r.meter(t, width-labelWidth-16))
		if showText && t.Text != "" {
			line += " " + t.Text
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

func (r *renderer) trigger(v uint8, pressed bool) string {
	s := fmt.Sprintf("%3d", v)
	if pressed {
		return r.paint(r.display.Colors.Highlight, s+"*")
	}
	return s + " "
}

// meter draws a segmented bar no wider than maxLen cells.
func (r *renderer) meter(t timerView, maxLen int) string {
	n := t.Segments
	filled := t.FilledSegments
	if n <= 0 {
		n = defaultMeterLen
		filled = int(t.Fill * float64(n))
	}
	if maxLen > 0 && n > maxLen {
		filled = filled * maxLen / n
		n = maxLen
	}
	if !t.Running || filled < 0 {
		filled = 0
	}
	if filled > n {
		filled = n
	}

	on, off := r.display.Colors.Highlight, r.display.Colors.Lines
	if t.ID == "parry" {
		on = r.display.Colors.ParryInactive
		if t.Active {
			on = r.display.Colors.ParryActive
		}
	} else if t.Active {
		on = r.display.Colors.ParryActive
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(r.paint(on, strings.Repeat("#", filled)))
	b.WriteString(r.paint(off, strings.Repeat(".", n-filled)))
	b.WriteString("]")
	return b.String()
}

// paint wraps s in a 24-bit foreground color when color output is on.
func (r *renderer) paint(hex, s string) string {
	if !r.color || s == "" {
		return s
	}
	rgb, ok := parseHexColor(hex)
	if !ok {
		return s
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", rgb[0], rgb[1], rgb[2], s)
}

func parseHexColor(s string) ([3]uint8, bool) {
	if len(s) != 7 || s[0] != '#' {
		return [3]uint8{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return [3]uint8{}, false
	}
	return [3]uint8{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}
