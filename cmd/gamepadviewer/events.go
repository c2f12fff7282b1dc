package main

import (
	"encoding/json"
	"fmt"
)

// ============================================================================
// Action Types
// ============================================================================
// Actions represent user intent arriving over IPC (gpv-ctl, scripts). They
// replace the overlay's context menu. The daemon loop wraps them in a
// TimedEvent and reduces them like any other event.
// ============================================================================

// SelectController switches polling to another controller index.
type SelectController struct {
	ID int `json:"id"`
}

func (SelectController) eventMarker() {}

// ToggleShowText flips whether overlays draw the accuracy text.
type ToggleShowText struct{}

func (ToggleShowText) eventMarker() {}

// ResetTimers stops every timer, including any queued rerun.
type ResetTimers struct{}

func (ResetTimers) eventMarker() {}

// SaveConfig writes the current config. An empty Path uses the file the
// daemon was started with.
type SaveConfig struct {
	Path string `json:"path,omitempty"`
}

func (SaveConfig) eventMarker() {}

// ReloadConfig re-reads the config file and applies it.
type ReloadConfig struct{}

func (ReloadConfig) eventMarker() {}

// GetState asks for a StateSnapshot in the IPC response. It never reaches
// the reducer directly; the IPC server turns it into RequestStateSnapshot.
type GetState struct{}

func (GetState) eventMarker() {}

// ============================================================================
// JSON Encoding/Decoding Support
// ============================================================================

// EventEnvelope wraps an event with a type discriminator for JSON marshaling
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalEvent deserializes a JSON event envelope into a concrete Event
func UnmarshalEvent(data []byte) (Event, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "select_controller":
		var a SelectController
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("unmarshal SelectController: %w", err)
		}
		if a.ID < 0 {
			return nil, fmt.Errorf("select_controller: id must be >= 0, got %d", a.ID)
		}
		return a, nil

	case "toggle_show_text":
		return ToggleShowText{}, nil

	case "reset_timers":
		return ResetTimers{}, nil

	case "save_config":
		var a SaveConfig
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &a); err != nil {
				return nil, fmt.Errorf("unmarshal SaveConfig: %w", err)
			}
		}
		return a, nil

	case "reload_config":
		return ReloadConfig{}, nil

	case "get_state":
		return GetState{}, nil

	default:
		return nil, fmt.Errorf("unknown event type: %q", env.Type)
	}
}

// MarshalEvent serializes an Event into a JSON envelope with type discriminator
func MarshalEvent(e Event) ([]byte, error) {
	var env EventEnvelope

	switch e := e.(type) {
	case SelectController:
		env.Type = "select_controller"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SelectController: %w", err)
		}
		env.Data = data

	case ToggleShowText:
		env.Type = "toggle_show_text"

	case ResetTimers:
		env.Type = "reset_timers"

	case SaveConfig:
		env.Type = "save_config"
		if e.Path != "" {
			data, err := json.Marshal(e)
			if err != nil {
				return nil, fmt.Errorf("marshal SaveConfig: %w", err)
			}
			env.Data = data
		}

	case ReloadConfig:
		env.Type = "reload_config"

	case GetState:
		env.Type = "get_state"

	default:
		return nil, fmt.Errorf("unsupported event type: %T", e)
	}

	return json.Marshal(env)
}
