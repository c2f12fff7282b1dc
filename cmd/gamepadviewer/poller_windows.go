//go:build windows

package main

import (
	"fmt"
	"log/slog"
	"unsafe"

	"golang.org/x/sys/windows"
)

// XInput supports user indices 0..3.
const xinputMaxControllers = 4

var (
	modXInput          = windows.NewLazySystemDLL("xinput1_4.dll")
	procXInputGetState = modXInput.NewProc("XInputGetState")
)

// xinputState mirrors XINPUT_STATE.
type xinputState struct {
	PacketNumber uint32
	Gamepad      xinputGamepad
}

// xinputGamepad mirrors XINPUT_GAMEPAD.
type xinputGamepad struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

// xinputPoller polls XInput. Poll times come from GetTickCount64, the clock
// the overlay has always used on Windows.
type xinputPoller struct {
	logger *slog.Logger
}

func newPlatformPoller(_ ControllerConfig, logger *slog.Logger) (ControllerPoller, error) {
	if err := procXInputGetState.Find(); err != nil {
		return nil, fmt.Errorf("load XInputGetState: %w", err)
	}
	return &xinputPoller{logger: logger}, nil
}

func (p *xinputPoller) Poll(controllerID int) ControllerSnapshot {
	snap := ControllerSnapshot{PollTimeMS: ClockValue(windows.DurationSinceBoot().Milliseconds())}
	if controllerID < 0 || controllerID >= xinputMaxControllers {
		return snap
	}

	var st xinputState
	r, _, _ := procXInputGetState.Call(uintptr(controllerID), uintptr(unsafe.Pointer(&st)))
	if r != uintptr(windows.ERROR_SUCCESS) {
		// ERROR_DEVICE_NOT_CONNECTED is the common case; anything else is worth a look.
		if r != uintptr(windows.ERROR_DEVICE_NOT_CONNECTED) {
			p.logger.Debug("XInputGetState failed", "controller_id", controllerID, "error", windows.Errno(r))
		}
		return snap
	}

	g := st.Gamepad
	snap.Buttons = g.Buttons
	snap.LeftTrigger = g.LeftTrigger
	snap.RightTrigger = g.RightTrigger
	snap.ThumbLX = g.ThumbLX
	snap.ThumbLY = g.ThumbLY
	snap.ThumbRX = g.ThumbRX
	snap.ThumbRY = g.ThumbRY
	snap.PacketNumber = st.PacketNumber
	snap.Valid = true
	return snap
}

func (p *xinputPoller) Close() error { return nil }
