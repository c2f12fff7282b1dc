package main

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Linux input event folding. Kept free of syscalls so it builds (and is
// tested) everywhere; the device plumbing lives in poller_linux.go.

// inputEvent represents a Linux input event structure (64-bit layout)
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

var inputEventSize = binary.Size(inputEvent{})

// Event types
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03
)

// SYN codes
const (
	synReport  = 0x00
	synDropped = 0x03
)

// ABS axes used by gamepads (xpad, hid-generic, hid-playstation).
const (
	absX     = 0x00
	absY     = 0x01
	absZ     = 0x02
	absRX    = 0x03
	absRY    = 0x04
	absRZ    = 0x05
	absGas   = 0x09
	absBrake = 0x0a
	absHat0X = 0x10
	absHat0Y = 0x11
)

// gamepadAxes are queried for their ranges when a device is opened.
var gamepadAxes = []uint16{absX, absY, absZ, absRX, absRY, absRZ, absGas, absBrake}

// evdevButtons maps gamepad key codes to XInput bits.
var evdevButtons = map[uint16]uint16{
	0x130: ButtonA,         // BTN_SOUTH
	0x131: ButtonB,         // BTN_EAST
	0x133: ButtonX,         // BTN_NORTH
	0x134: ButtonY,         // BTN_WEST
	0x136: ButtonLShoulder, // BTN_TL
	0x137: ButtonRShoulder, // BTN_TR
	0x13a: ButtonBack,      // BTN_SELECT
	0x13b: ButtonStart,     // BTN_START
	0x13c: ButtonGuide,     // BTN_MODE
	0x13d: ButtonLThumb,    // BTN_THUMBL
	0x13e: ButtonRThumb,    // BTN_THUMBR
	0x220: ButtonDPadUp,    // BTN_DPAD_UP
	0x221: ButtonDPadDown,  // BTN_DPAD_DOWN
	0x222: ButtonDPadLeft,  // BTN_DPAD_LEFT
	0x223: ButtonDPadRight, // BTN_DPAD_RIGHT
}

// absRange is the reported range of one axis (from EVIOCGABS).
type absRange struct {
	Min, Max int32
}

// Fallback ranges when the device does not report one.
var (
	defaultStickRange   = absRange{Min: math.MinInt16, Max: math.MaxInt16}
	defaultTriggerRange = absRange{Min: 0, Max: 255}
)

// gamepadState is the XInput-shaped input part of a snapshot.
type gamepadState struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

// evdevGamepad folds an input event stream into gamepad state.
//
// Events between two SYN_REPORTs form one packet. The published state only
// changes at SYN_REPORT, and the packet number only advances when it does.
type evdevGamepad struct {
	ranges map[uint16]absRange

	pending   gamepadState
	published gamepadState
	packet    uint32

	// Set after SYN_DROPPED: ignore events until the next SYN_REPORT.
	dropping bool
}

func newEvdevGamepad(ranges map[uint16]absRange) *evdevGamepad {
	if ranges == nil {
		ranges = map[uint16]absRange{}
	}
	return &evdevGamepad{ranges: ranges}
}

// State returns the last published state and its packet number.
func (g *evdevGamepad) State() (gamepadState, uint32) {
	return g.published, g.packet
}

// Apply folds one event.
func (g *evdevGamepad) Apply(ev inputEvent) {
	if ev.Type == evSyn {
		switch ev.Code {
		case synReport:
			if g.dropping {
				g.dropping = false
				g.pending = g.published
				return
			}
			if g.pending != g.published {
				g.published = g.pending
				g.packet++
			}
		case synDropped:
			g.dropping = true
		}
		return
	}
	if g.dropping {
		return
	}

	switch ev.Type {
	case evKey:
		mask, ok := evdevButtons[ev.Code]
		if !ok {
			return
		}
		if ev.Value != 0 {
			g.pending.Buttons |= mask
		} else {
			g.pending.Buttons &^= mask
		}

	case evAbs:
		g.applyAbs(ev.Code, ev.Value)
	}
}

func (g *evdevGamepad) applyAbs(code uint16, v int32) {
	p := &g.pending
	switch code {
	case absX:
		p.ThumbLX = scaleStick(v, g.rangeOf(code, defaultStickRange))
	case absY:
		// evdev Y grows downward; XInput Y grows upward.
		p.ThumbLY = invertStick(scaleStick(v, g.rangeOf(code, defaultStickRange)))
	case absRX:
		p.ThumbRX = scaleStick(v, g.rangeOf(code, defaultStickRange))
	case absRY:
		p.ThumbRY = invertStick(scaleStick(v, g.rangeOf(code, defaultStickRange)))
	case absZ, absBrake:
		p.LeftTrigger = scaleTrigger(v, g.rangeOf(code, defaultTriggerRange))
	case absRZ, absGas:
		p.RightTrigger = scaleTrigger(v, g.rangeOf(code, defaultTriggerRange))
	case absHat0X:
		p.Buttons &^= ButtonDPadLeft | ButtonDPadRight
		switch {
		case v < 0:
			p.Buttons |= ButtonDPadLeft
		case v > 0:
			p.Buttons |= ButtonDPadRight
		}
	case absHat0Y:
		p.Buttons &^= ButtonDPadUp | ButtonDPadDown
		switch {
		case v < 0:
			p.Buttons |= ButtonDPadUp
		case v > 0:
			p.Buttons |= ButtonDPadDown
		}
	}
}

func (g *evdevGamepad) rangeOf(code uint16, def absRange) absRange {
	if r, ok := g.ranges[code]; ok && r.Max > r.Min {
		return r
	}
	return def
}

// scaleAxis maps v from r onto [lo, hi], clamping out-of-range input.
func scaleAxis(v int32, r absRange, lo, hi float64) float64 {
	f := float64(v-r.Min) / float64(r.Max-r.Min)
	f = math.Max(0, math.Min(1, f))
	return lo + math.Round(f*(hi-lo))
}

func scaleStick(v int32, r absRange) int16 {
	return int16(scaleAxis(v, r, math.MinInt16, math.MaxInt16))
}

func scaleTrigger(v int32, r absRange) uint8 {
	return uint8(scaleAxis(v, r, 0, 255))
}

// invertStick flips an axis without overflowing at -32768.
func invertStick(v int16) int16 {
	return -1 - v
}

// parseInputEvents decodes whole input_event records from buf; a trailing
// partial record is ignored.
func parseInputEvents(buf []byte) []inputEvent {
	n := len(buf) / inputEventSize
	if n == 0 {
		return nil
	}
	out := make([]inputEvent, 0, n)
	reader := bytes.NewReader(nil)
	for i := 0; i < n; i++ {
		reader.Reset(buf[i*inputEventSize : (i+1)*inputEventSize])
		var ev inputEvent
		if err := binary.Read(reader, binary.LittleEndian, &ev); err != nil {
			// Skip malformed events
			continue
		}
		out = append(out, ev)
	}
	return out
}
