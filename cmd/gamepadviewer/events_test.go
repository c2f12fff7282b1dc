package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalEvent(t *testing.T) {
	tests := []struct {
		in   string
		want Event
	}{
		{`{"type":"select_controller","data":{"id":2}}`, SelectController{ID: 2}},
		{`{"type":"toggle_show_text"}`, ToggleShowText{}},
		{`{"type":"reset_timers"}`, ResetTimers{}},
		{`{"type":"save_config"}`, SaveConfig{}},
		{`{"type":"save_config","data":{"path":"~/gpv.toml"}}`, SaveConfig{Path: "~/gpv.toml"}},
		{`{"type":"reload_config"}`, ReloadConfig{}},
		{`{"type":"get_state"}`, GetState{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := UnmarshalEvent([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalEvent_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":        `select_controller 1`,
		"unknown type":    `{"type":"explode"}`,
		"missing data":    `{"type":"select_controller"}`,
		"negative id":     `{"type":"select_controller","data":{"id":-1}}`,
		"wrong data type": `{"type":"select_controller","data":{"id":"one"}}`,
		"bad save data":   `{"type":"save_config","data":[1,2]}`,
		"empty type":      `{}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalEvent([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestMarshalEvent_ParsesBack(t *testing.T) {
	for _, ev := range []Event{
		SelectController{ID: 3},
		ToggleShowText{},
		ResetTimers{},
		SaveConfig{},
		SaveConfig{Path: "/tmp/x.yaml"},
		ReloadConfig{},
		GetState{},
	} {
		data, err := MarshalEvent(ev)
		require.NoError(t, err)

		got, err := UnmarshalEvent(data)
		require.NoError(t, err)
		assert.Equal(t, ev, got)
	}
}

func TestMarshalEvent_RejectsInternalEvents(t *testing.T) {
	_, err := MarshalEvent(Tick{})
	assert.Error(t, err)
}
