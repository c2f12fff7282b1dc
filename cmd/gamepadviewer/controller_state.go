package main

import "math"

// ControllerSnapshot is one poll of the controller.
//
// The layout follows XINPUT_STATE. When Valid is false the input fields are
// zero and must not be used for edge detection, but PollTimeMS is still set:
// timers keep expiring on wall time regardless of input.
type ControllerSnapshot struct {
	Buttons      uint16 `json:"buttons"`
	LeftTrigger  uint8  `json:"left_trigger"`
	RightTrigger uint8  `json:"right_trigger"`
	ThumbLX      int16  `json:"thumb_lx"`
	ThumbLY      int16  `json:"thumb_ly"`
	ThumbRX      int16  `json:"thumb_rx"`
	ThumbRY      int16  `json:"thumb_ry"`

	// Changes whenever the device reports a new input state.
	PacketNumber uint32 `json:"packet_number"`

	Valid      bool       `json:"valid"`
	PollTimeMS ClockValue `json:"poll_time_ms"`
}

// IsButtonPressed reports whether any button in mask is held.
func (s ControllerSnapshot) IsButtonPressed(mask uint16) bool {
	return s.Valid && s.Buttons&mask != 0
}

// IsTriggerPressed reports whether the trigger on side is past the dead zone.
//
// Whether the dead zone value itself counts as pressed is a config knob; the
// game's exact threshold has not been pinned down.
func (s ControllerSnapshot) IsTriggerPressed(th AnalogThresholdConfig, side string) bool {
	if !s.Valid {
		return false
	}
	v := int(s.LeftTrigger)
	if side == TriggerRight {
		v = int(s.RightTrigger)
	}
	if th.TriggerInclusive {
		return v >= th.TriggerDeadZone
	}
	return v > th.TriggerDeadZone
}

// StickSpeed is the movement speed implied by the left stick.
type StickSpeed string

const (
	StickIdle   StickSpeed = "idle"
	StickWalk   StickSpeed = "walk"
	StickRun    StickSpeed = "run"
	StickSprint StickSpeed = "sprint"
)

// LeftStickSpeed classifies the left stick deflection.
//
// Walking starts outside an octagon whose edges are WalkThreshold from the
// center. Running and sprinting use circles.
func (s ControllerSnapshot) LeftStickSpeed(th AnalogThresholdConfig) StickSpeed {
	if !s.Valid {
		return StickIdle
	}
	x := math.Abs(float64(s.ThumbLX))
	y := math.Abs(float64(s.ThumbLY))
	r := math.Hypot(x, y)

	switch {
	case r > float64(th.LeftStickSprintThreshold):
		return StickSprint
	case r > float64(th.LeftStickRunThreshold):
		return StickRun
	}

	oct := math.Max(math.Max(x, y), (x+y)/math.Sqrt2)
	if oct > float64(th.LeftStickWalkThreshold) {
		return StickWalk
	}
	return StickIdle
}

// RightStickActive reports whether either right stick axis exceeds the dead zone.
func (s ControllerSnapshot) RightStickActive(th AnalogThresholdConfig) bool {
	if !s.Valid {
		return false
	}
	dz := float64(th.RightStickDeadZone)
	return math.Abs(float64(s.ThumbRX)) > dz || math.Abs(float64(s.ThumbRY)) > dz
}

// PressedButtonNames lists the held buttons in display order.
func (s ControllerSnapshot) PressedButtonNames() []string {
	if !s.Valid {
		return nil
	}
	var names []string
	for _, b := range buttonNames {
		if s.Buttons&b.Mask != 0 {
			names = append(names, b.Name)
		}
	}
	return names
}
