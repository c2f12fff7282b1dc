package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMsToFrames(t *testing.T) {
	tests := []struct {
		ms   ClockValue
		want int
	}{
		{0, 1},
		{1, 1},
		{33, 1},
		{34, 2},
		{66, 2},
		{67, 3},
		{200, 6},
		{1000, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, msToFrames(tt.ms), "msToFrames(%d)", tt.ms)
	}
}

func TestClassifyButtonWindow_Boundaries(t *testing.T) {
	cfg := ButtonTimerConfig{DurationMS: 600, ActiveStartMS: 200, ActiveEndMS: 400}

	tests := []struct {
		name    string
		elapsed ClockValue
		want    ButtonWindow
	}{
		{"window start is active", 200, ButtonWindow{State: WindowActive, Frames: 1, MaxFrame: 6}},
		{"window end is active", 400, ButtonWindow{State: WindowActive, Frames: 6, MaxFrame: 6}},
		{"one ms before", 199, ButtonWindow{State: WindowBefore, Frames: 1}},
		{"one ms after", 401, ButtonWindow{State: WindowAfter, Frames: 1}},
		{"at zero", 0, ButtonWindow{State: WindowBefore, Frames: 6}},
		{"mid window", 300, ButtonWindow{State: WindowActive, Frames: 3, MaxFrame: 6}},
		{"well after", 500, ButtonWindow{State: WindowAfter, Frames: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyButtonWindow(cfg, tt.elapsed))
		})
	}
}

func TestClassifyButtonWindow_ZeroWidthWindow(t *testing.T) {
	cfg := ButtonTimerConfig{DurationMS: 100, ActiveStartMS: 50, ActiveEndMS: 50}

	got := classifyButtonWindow(cfg, 50)
	assert.Equal(t, ButtonWindow{State: WindowActive, Frames: 1, MaxFrame: 1}, got)
}

func TestIsButtonActive(t *testing.T) {
	cfg := ButtonTimerConfig{DurationMS: 600, ActiveStartMS: 200, ActiveEndMS: 400}

	assert.False(t, isButtonActive(cfg, 199))
	assert.True(t, isButtonActive(cfg, 200))
	assert.True(t, isButtonActive(cfg, 400))
	assert.False(t, isButtonActive(cfg, 401))
}

func TestParryAccuracyString(t *testing.T) {
	cfg := ButtonTimerConfig{DurationMS: 667, ActiveStartMS: 200, ActiveEndMS: 400}

	// 3 frames before the window: 200 - 100 = 100ms -> 3 frames.
	assert.Equal(t, "3 late", parryAccuracyString(cfg, 100))

	// 2 frames after: 400 + 60 -> 60ms -> 2 frames.
	assert.Equal(t, "2 early", parryAccuracyString(cfg, 460))

	assert.Equal(t, "1 of 6", parryAccuracyString(cfg, 200))
	assert.Equal(t, "6 of 6", parryAccuracyString(cfg, 400))
}

func TestParryAccuracyString_ActiveFrameOfMax(t *testing.T) {
	// 7 frames wide (0..233ms), 5th frame at 150ms.
	cfg := ButtonTimerConfig{DurationMS: 500, ActiveStartMS: 0, ActiveEndMS: 233}
	assert.Equal(t, "5 of 7", parryAccuracyString(cfg, 150))
}

func TestDodgeAccuracyString(t *testing.T) {
	cfg := ButtonTimerConfig{DurationMS: 800, ActiveStartMS: 133, ActiveEndMS: 533}

	tests := []struct {
		name       string
		elapsed    ClockValue
		queued     bool
		wantText   string
		wantActive bool
	}{
		{"startup", 0, false, "L 4", false},
		{"startup queued", 0, true, "L 4+", false},
		{"first invulnerable frame", 133, false, "1/12", true},
		{"last invulnerable frame queued", 533, true, "12/12+", true},
		{"recovery", 600, false, "R 3", false},
		{"recovery queued", 600, true, "R 3+", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, active := dodgeAccuracyString(cfg, tt.elapsed, tt.queued)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantActive, active)
		})
	}
}

func TestButtonWindowState_String(t *testing.T) {
	assert.Equal(t, "before", WindowBefore.String())
	assert.Equal(t, "active", WindowActive.String())
	assert.Equal(t, "after", WindowAfter.String())
	assert.Equal(t, "ButtonWindowState(7)", ButtonWindowState(7).String())
}
