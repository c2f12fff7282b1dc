package main

import "fmt"

// HUDFrame is everything an overlay needs to draw one frame. Frames are
// immutable once built.
type HUDFrame struct {
	PollTimeMS   ClockValue `json:"poll_time_ms"`
	Valid        bool       `json:"valid"`
	PacketNumber uint32     `json:"packet_number"`
	ControllerID int        `json:"controller_id"`

	Buttons []string `json:"buttons"`

	LeftTrigger         uint8 `json:"left_trigger"`
	RightTrigger        uint8 `json:"right_trigger"`
	LeftTriggerPressed  bool  `json:"left_trigger_pressed"`
	RightTriggerPressed bool  `json:"right_trigger_pressed"`

	ThumbLX int16 `json:"thumb_lx"`
	ThumbLY int16 `json:"thumb_ly"`
	ThumbRX int16 `json:"thumb_rx"`
	ThumbRY int16 `json:"thumb_ry"`

	LeftStick        StickSpeed `json:"left_stick"`
	RightStickActive bool       `json:"right_stick_active"`

	ShowText bool        `json:"show_text"`
	Timers   []TimerView `json:"timers"`
}

// TimerView is the render model for one tracked timer.
type TimerView struct {
	ID        TimerID    `json:"id"`
	Running   bool       `json:"running"`
	Queued    bool       `json:"queued"`
	ElapsedMS ClockValue `json:"elapsed_ms"`

	DurationMS    ClockValue `json:"duration_ms"`
	ActiveStartMS ClockValue `json:"active_start_ms"`
	ActiveEndMS   ClockValue `json:"active_end_ms"`

	// Fill is ElapsedMS/DurationMS clamped to [0,1].
	Fill           float64 `json:"fill"`
	Segments       int     `json:"segments"`
	FilledSegments int     `json:"filled_segments"`

	// Active is set while the elapsed time is inside the active window.
	Active bool `json:"active"`

	// Text is the accuracy string, empty when idle or not applicable.
	Text string `json:"text,omitempty"`
}

// BuildFrame renders the tracker's current state.
func BuildFrame(s *ViewerState) HUDFrame {
	cur := s.Tracker.Current()
	th := s.Config.Thresholds
	now := cur.PollTimeMS

	f := HUDFrame{
		PollTimeMS:   now,
		Valid:        cur.Valid,
		PacketNumber: cur.PacketNumber,
		ControllerID: s.Config.Controller.ID,

		Buttons: cur.PressedButtonNames(),

		LeftTrigger:         cur.LeftTrigger,
		RightTrigger:        cur.RightTrigger,
		LeftTriggerPressed:  cur.IsTriggerPressed(th, TriggerLeft),
		RightTriggerPressed: cur.IsTriggerPressed(th, TriggerRight),

		ThumbLX: cur.ThumbLX,
		ThumbLY: cur.ThumbLY,
		ThumbRX: cur.ThumbRX,
		ThumbRY: cur.ThumbRY,

		LeftStick:        cur.LeftStickSpeed(th),
		RightStickActive: cur.RightStickActive(th),

		ShowText: s.Config.Display.ShowText,
	}
	if f.Buttons == nil {
		f.Buttons = []string{}
	}

	for _, tt := range s.Tracker.timers {
		if !enabled(tt) {
			continue
		}
		f.Timers = append(f.Timers, buildTimerView(tt, now, s.Config.Parry.ShowElapsedTime))
	}

	return f
}

func buildTimerView(tt *trackedTimer, now ClockValue, showElapsed bool) TimerView {
	cfg := tt.Config
	v := TimerView{
		ID:            tt.ID,
		Running:       tt.Timer.IsRunning(),
		Queued:        tt.Timer.IsQueued(),
		ElapsedMS:     tt.Timer.ElapsedMS(now),
		DurationMS:    cfg.DurationMS,
		ActiveStartMS: cfg.ActiveStartMS,
		ActiveEndMS:   cfg.ActiveEndMS,
		Segments:      cfg.NumSegments,
	}
	if !v.Running {
		return v
	}

	v.Fill = float64(v.ElapsedMS) / float64(cfg.DurationMS)
	if v.Fill > 1 {
		v.Fill = 1
	}
	v.FilledSegments = int(v.Fill * float64(cfg.NumSegments))

	switch tt.ID {
	case TimerParry:
		v.Active = isButtonActive(cfg, v.ElapsedMS)
		v.Text = parryAccuracyString(cfg, v.ElapsedMS)
		if showElapsed {
			v.Text = fmt.Sprintf("%s (%d ms)", v.Text, v.ElapsedMS)
		}

	case TimerDodgeInvuln:
		v.Text, v.Active = dodgeAccuracyString(cfg, v.ElapsedMS, v.Queued)

	default:
		// The release timer only marks that the button just came up.
		v.Active = true
	}

	return v
}
