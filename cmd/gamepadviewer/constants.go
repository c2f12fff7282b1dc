package main

// XInput button bitmasks (XINPUT_GAMEPAD_*). Linux evdev input is folded into
// the same layout so the rest of the daemon only deals with one shape.
const (
	ButtonDPadUp    uint16 = 0x0001
	ButtonDPadDown  uint16 = 0x0002
	ButtonDPadLeft  uint16 = 0x0004
	ButtonDPadRight uint16 = 0x0008
	ButtonStart     uint16 = 0x0010
	ButtonBack      uint16 = 0x0020
	ButtonLThumb    uint16 = 0x0040
	ButtonRThumb    uint16 = 0x0080
	ButtonLShoulder uint16 = 0x0100
	ButtonRShoulder uint16 = 0x0200
	ButtonGuide     uint16 = 0x0400
	ButtonA         uint16 = 0x1000
	ButtonB         uint16 = 0x2000
	ButtonX         uint16 = 0x4000
	ButtonY         uint16 = 0x8000
)

// buttonNames maps config/display names to bitmasks. Order matters for
// HUD output, so it is a slice rather than a map.
var buttonNames = []struct {
	Name string
	Mask uint16
}{
	{"dpad_up", ButtonDPadUp},
	{"dpad_down", ButtonDPadDown},
	{"dpad_left", ButtonDPadLeft},
	{"dpad_right", ButtonDPadRight},
	{"start", ButtonStart},
	{"back", ButtonBack},
	{"l3", ButtonLThumb},
	{"r3", ButtonRThumb},
	{"lb", ButtonLShoulder},
	{"rb", ButtonRShoulder},
	{"guide", ButtonGuide},
	{"a", ButtonA},
	{"b", ButtonB},
	{"x", ButtonX},
	{"y", ButtonY},
}

// buttonMaskByName returns the bitmask for a button name, or false if unknown.
func buttonMaskByName(name string) (uint16, bool) {
	for _, b := range buttonNames {
		if b.Name == name {
			return b.Mask, true
		}
	}
	return 0, false
}

// Trigger sides for the parry input.
const (
	TriggerLeft  = "left"
	TriggerRight = "right"
)

// Timing classification granularity: the game runs its logic at 30 FPS.
const classifierFPS = 30

// Defaults. The analog thresholds and parry window are tuned for Elden Ring.
const (
	defaultPollingIntervalMS = 16 // ~60 FPS

	defaultTriggerDeadZone          = 127
	defaultRightStickDeadZone       = 6600
	defaultLeftStickWalkThreshold   = 16000
	defaultLeftStickRunThreshold    = 25500
	defaultLeftStickSprintThreshold = 30000

	defaultParryDurationMS    = 667
	defaultParryNumSegments   = 20
	defaultParryActiveStartMS = 1000 * 6 / 30
	defaultParryActiveEndMS   = 1000 * 12 / 30

	// One frame at 30 FPS.
	defaultDodgeReleaseDurationMS = 33

	defaultDodgeInvulnDurationMS    = 1000 * 24 / 30
	defaultDodgeInvulnActiveStartMS = 1000 * 4 / 30
	defaultDodgeInvulnActiveEndMS   = 1000 * 16 / 30
	defaultDodgeInvulnNumSegments   = 24

	defaultHTTPAddr   = "127.0.0.1:3002"
	defaultWSPath     = "/ws/state"
	defaultSocketPath = "/tmp/gamepadviewer.sock"
)
