package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateInit = `{"type":"state_init","ts":"2026-01-02T03:04:05Z","data":{
  "display":{"controller_id":0,"show_text":true,"colors":{"lines":"#ffffff","highlight":"#ff0000","parry_active":"#00ff00","parry_inactive":"#808080"}},
  "frame":{"valid":true,"packet_number":7,"controller_id":0,"buttons":["lb","a"],
    "left_trigger":200,"left_trigger_pressed":true,"right_trigger":0,
    "left_stick":"walk","right_stick_active":false,"show_text":true,
    "timers":[
      {"id":"parry","running":true,"elapsed_ms":300,"fill":0.45,"segments":10,"filled_segments":4,"active":true,"text":"3 of 6"},
      {"id":"dodge_invulnerability","running":false,"segments":24}
    ]}}}`

func TestRenderer_StateInit(t *testing.T) {
	r := &renderer{}
	require.NoError(t, r.handle([]byte(stateInit)))

	out := r.render(80)

	assert.Contains(t, out, "controller 0  connected  packet 7")
	assert.Contains(t, out, "buttons  lb a")
	assert.Contains(t, out, "LT 200*")
	assert.Contains(t, out, "left stick walk  right stick idle")
	assert.Contains(t, out, "parry     [####......] 3 of 6")
	assert.Contains(t, out, "dodge     [........................]")
	assert.NotContains(t, out, "\x1b[", "no escapes without color")
}

func TestRenderer_DisplayChangedHidesText(t *testing.T) {
	r := &renderer{}
	require.NoError(t, r.handle([]byte(stateInit)))
	require.NoError(t, r.handle([]byte(`{"type":"display_changed","data":{"show_text":false}}`)))

	assert.NotContains(t, r.render(80), "3 of 6")
}

func TestRenderer_FrameReplacesFrame(t *testing.T) {
	r := &renderer{}
	require.NoError(t, r.handle([]byte(`{"type":"frame","data":{"valid":false,"packet_number":8,"buttons":[]}}`)))

	out := r.render(80)
	assert.Contains(t, out, "disconnected  packet 8")
	assert.Contains(t, out, "buttons  -")
}

func TestRenderer_Waiting(t *testing.T) {
	assert.Contains(t, (&renderer{}).render(80), "waiting")
}

func TestRenderer_RejectsUnknownMessages(t *testing.T) {
	r := &renderer{}
	assert.Error(t, r.handle([]byte(`{"type":"volume_changed"}`)))
	assert.Error(t, r.handle([]byte(`not json`)))
}

func TestRenderer_MeterShrinksToWidth(t *testing.T) {
	r := &renderer{}
	m := r.meter(timerView{ID: "dodge_invulnerability", Running: true, Segments: 24, FilledSegments: 12}, 12)
	assert.Equal(t, "[######......]", m)
}

func TestRenderer_MeterClampsFilledSegments(t *testing.T) {
	r := &renderer{}
	assert.Equal(t, "[####]", r.meter(timerView{Running: true, Segments: 4, FilledSegments: 9}, 0))
	assert.Equal(t, "[....]", r.meter(timerView{Running: true, Segments: 4, FilledSegments: -3}, 0))
	assert.Equal(t, "[####################]", r.meter(timerView{Running: true, Fill: 1.7}, 0))
}

func TestRenderer_Paint(t *testing.T) {
	r := &renderer{color: true}
	assert.Equal(t, "\x1b[38;2;255;0;16mx\x1b[0m", r.paint("#ff0010", "x"))
	assert.Equal(t, "x", r.paint("red", "x"))
	assert.Equal(t, "", r.paint("#ffffff", ""))
}
