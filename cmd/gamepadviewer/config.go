package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the gamepadviewer daemon.
//
// The file format is chosen by extension (.yaml/.yml, .json, .toml). Keep
// defaults and validation centralized so the rest of the code can assume a
// well-formed config.
type Config struct {
	Controller ControllerConfig      `yaml:"controller" json:"controller" toml:"controller"`
	Thresholds AnalogThresholdConfig `yaml:"thresholds" json:"thresholds" toml:"thresholds"`
	Parry      ParryConfig           `yaml:"parry" json:"parry" toml:"parry"`
	Dodge      DodgeConfig           `yaml:"dodge" json:"dodge" toml:"dodge"`
	Display    DisplayConfig         `yaml:"display" json:"display" toml:"display"`
	Server     ServerConfig          `yaml:"server" json:"server" toml:"server"`
	IPC        IPCConfig             `yaml:"ipc" json:"ipc" toml:"ipc"`
	Logging    LoggingConfig         `yaml:"logging" json:"logging" toml:"logging"`
}

type ControllerConfig struct {
	// Index of the controller to poll (XInput user index, or index into EvdevDevices).
	ID                int `yaml:"id" json:"id" toml:"id"`
	PollingIntervalMS int `yaml:"polling_interval_ms" json:"polling_interval_ms" toml:"polling_interval_ms"`

	// Linux only: gamepad event devices, e.g. /dev/input/by-id/...-event-joystick
	EvdevDevices []string `yaml:"evdev_devices,omitempty" json:"evdev_devices,omitempty" toml:"evdev_devices,omitempty"`
}

// AnalogThresholdConfig holds the dead zones and stick speed thresholds.
// Triggers are 0..255; stick values are 0..32767.
type AnalogThresholdConfig struct {
	TriggerDeadZone int `yaml:"trigger_dead_zone" json:"trigger_dead_zone" toml:"trigger_dead_zone"`

	// Count a trigger sitting exactly on the dead zone as pressed.
	TriggerInclusive bool `yaml:"trigger_inclusive" json:"trigger_inclusive" toml:"trigger_inclusive"`

	RightStickDeadZone       int `yaml:"right_stick_dead_zone" json:"right_stick_dead_zone" toml:"right_stick_dead_zone"`
	LeftStickWalkThreshold   int `yaml:"left_stick_walk_threshold" json:"left_stick_walk_threshold" toml:"left_stick_walk_threshold"`
	LeftStickRunThreshold    int `yaml:"left_stick_run_threshold" json:"left_stick_run_threshold" toml:"left_stick_run_threshold"`
	LeftStickSprintThreshold int `yaml:"left_stick_sprint_threshold" json:"left_stick_sprint_threshold" toml:"left_stick_sprint_threshold"`
}

type ParryConfig struct {
	Window ButtonTimerConfig `yaml:"window" json:"window" toml:"window"`

	// Show elapsed milliseconds next to the accuracy text.
	ShowElapsedTime bool `yaml:"show_elapsed_time" json:"show_elapsed_time" toml:"show_elapsed_time"`

	// "left" or "right"
	Trigger string `yaml:"trigger" json:"trigger" toml:"trigger"`
}

type DodgeConfig struct {
	// Button name, e.g. "b". See buttonNames.
	Button string `yaml:"button" json:"button" toml:"button"`

	ReleaseDurationMS ClockValue        `yaml:"release_duration_ms" json:"release_duration_ms" toml:"release_duration_ms"`
	Invulnerability   ButtonTimerConfig `yaml:"invulnerability" json:"invulnerability" toml:"invulnerability"`
}

type DisplayConfig struct {
	ShowText bool         `yaml:"show_text" json:"show_text" toml:"show_text"`
	Colors   ColorsConfig `yaml:"colors" json:"colors" toml:"colors"`
}

// ColorsConfig holds "#rrggbb" colors for overlays.
type ColorsConfig struct {
	Lines         string `yaml:"lines" json:"lines" toml:"lines"`
	Highlight     string `yaml:"highlight" json:"highlight" toml:"highlight"`
	ParryActive   string `yaml:"parry_active" json:"parry_active" toml:"parry_active"`
	ParryInactive string `yaml:"parry_inactive" json:"parry_inactive" toml:"parry_inactive"`
}

type ServerConfig struct {
	// Empty disables the HTTP/WebSocket server.
	HTTPAddr string `yaml:"http_addr" json:"http_addr" toml:"http_addr"`
	WSPath   string `yaml:"ws_path" json:"ws_path" toml:"ws_path"`
}

type IPCConfig struct {
	SocketPath string `yaml:"socket_path" json:"socket_path" toml:"socket_path"`
}

type LoggingConfig struct {
	Level string `yaml:"level" json:"level" toml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
// Keep this aligned with constants.go.
func DefaultConfig() Config {
	return Config{
		Controller: ControllerConfig{
			ID:                0,
			PollingIntervalMS: defaultPollingIntervalMS,
		},
		Thresholds: AnalogThresholdConfig{
			TriggerDeadZone:          defaultTriggerDeadZone,
			RightStickDeadZone:       defaultRightStickDeadZone,
			LeftStickWalkThreshold:   defaultLeftStickWalkThreshold,
			LeftStickRunThreshold:    defaultLeftStickRunThreshold,
			LeftStickSprintThreshold: defaultLeftStickSprintThreshold,
		},
		Parry: ParryConfig{
			Window: ButtonTimerConfig{
				DurationMS:    defaultParryDurationMS,
				ActiveStartMS: defaultParryActiveStartMS,
				ActiveEndMS:   defaultParryActiveEndMS,
				NumSegments:   defaultParryNumSegments,
			},
			ShowElapsedTime: false,
			Trigger:         TriggerLeft,
		},
		Dodge: DodgeConfig{
			Button:            "b",
			ReleaseDurationMS: defaultDodgeReleaseDurationMS,
			Invulnerability: ButtonTimerConfig{
				DurationMS:    defaultDodgeInvulnDurationMS,
				ActiveStartMS: defaultDodgeInvulnActiveStartMS,
				ActiveEndMS:   defaultDodgeInvulnActiveEndMS,
				NumSegments:   defaultDodgeInvulnNumSegments,
			},
		},
		Display: DisplayConfig{
			ShowText: true,
			Colors: ColorsConfig{
				Lines:         "#ffffff",
				Highlight:     "#ff0000",
				ParryActive:   "#00ff00",
				ParryInactive: "#808080",
			},
		},
		Server: ServerConfig{
			HTTPAddr: defaultHTTPAddr,
			WSPath:   defaultWSPath,
		},
		IPC: IPCConfig{
			SocketPath: defaultSocketPath,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// configFormat returns "yaml", "json" or "toml" for a config path.
func configFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("unsupported config extension %q (want .yaml, .yml, .json or .toml)", filepath.Ext(path))
	}
}

// LoadConfigFile reads and parses a config file on top of DefaultConfig.
//
// Unknown fields are rejected in every format (helps catch typos). Values
// missing from the file keep their defaults.
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	format, err := configFormat(path)
	if err != nil {
		return Config{}, err
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return decodeConfig(format, b)
}

func decodeConfig(format string, b []byte) (Config, error) {
	cfg := DefaultConfig()

	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode config yaml: %w", err)
		}
		// Only whitespace/comments are allowed after the document.
		var extra yaml.Node
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
		}

	case "json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode config json: %w", err)
		}
		if dec.More() {
			return Config{}, fmt.Errorf("decode config json: unexpected trailing data")
		}

	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(b)).Strict(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode config toml: %w", err)
		}

	default:
		return Config{}, fmt.Errorf("unknown config format %q", format)
	}

	return cfg, nil
}

// SaveConfigFile writes cfg to path in the format implied by its extension,
// creating parent directories as needed.
func SaveConfigFile(path string, cfg Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	format, err := configFormat(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "yaml":
		data, err = yaml.Marshal(cfg)
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	case "toml":
		data, err = toml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("encode config %s: %w", format, err)
	}

	p := ExpandPath(path)
	if dir := filepath.Dir(p); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	// Write then rename so a crash never leaves a truncated config behind.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// FlagOverrides applies overrides from flags on top of a loaded config.
//
// Flags should pass pointers; each override is only applied if non-nil.
// main.go decides which flags exist.
type FlagOverrides struct {
	ControllerID      *int
	PollingIntervalMS *int
	EvdevDevice       *string

	TriggerDeadZone  *int
	TriggerInclusive *bool

	ParryTrigger *string
	DodgeButton  *string
	ShowText     *bool

	HTTPAddr      *string
	IPCSocketPath *string

	LogLevel *string
}

// Apply merges the overrides into cfg. If an override pointer is nil, it is ignored.
// If the pointer is non-nil, the value is applied (even if it is a "zero value").
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.ControllerID != nil {
		cfg.Controller.ID = *o.ControllerID
	}
	if o.PollingIntervalMS != nil {
		cfg.Controller.PollingIntervalMS = *o.PollingIntervalMS
	}
	if o.EvdevDevice != nil {
		cfg.Controller.EvdevDevices = []string{*o.EvdevDevice}
	}

	if o.TriggerDeadZone != nil {
		cfg.Thresholds.TriggerDeadZone = *o.TriggerDeadZone
	}
	if o.TriggerInclusive != nil {
		cfg.Thresholds.TriggerInclusive = *o.TriggerInclusive
	}

	if o.ParryTrigger != nil {
		cfg.Parry.Trigger = *o.ParryTrigger
	}
	if o.DodgeButton != nil {
		cfg.Dodge.Button = *o.DodgeButton
	}
	if o.ShowText != nil {
		cfg.Display.ShowText = *o.ShowText
	}

	if o.HTTPAddr != nil {
		cfg.Server.HTTPAddr = *o.HTTPAddr
	}
	if o.IPCSocketPath != nil {
		cfg.IPC.SocketPath = *o.IPCSocketPath
	}

	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error.
// This is intended to be called after defaults + file + overrides are applied.
func (c *Config) Validate() error {
	// Controller
	if c.Controller.ID < 0 {
		return errors.New("controller.id must be >= 0")
	}
	if c.Controller.PollingIntervalMS < 1 || c.Controller.PollingIntervalMS > 1000 {
		return errors.New("controller.polling_interval_ms must be between 1 and 1000")
	}
	for i, dev := range c.Controller.EvdevDevices {
		if dev == "" {
			return fmt.Errorf("controller.evdev_devices[%d] is empty", i)
		}
	}

	// Thresholds
	th := c.Thresholds
	if th.TriggerDeadZone < 0 || th.TriggerDeadZone > 255 {
		return errors.New("thresholds.trigger_dead_zone must be between 0 and 255")
	}
	for name, v := range map[string]int{
		"right_stick_dead_zone":       th.RightStickDeadZone,
		"left_stick_walk_threshold":   th.LeftStickWalkThreshold,
		"left_stick_run_threshold":    th.LeftStickRunThreshold,
		"left_stick_sprint_threshold": th.LeftStickSprintThreshold,
	} {
		if v < 0 || v > 32767 {
			return fmt.Errorf("thresholds.%s must be between 0 and 32767", name)
		}
	}
	if th.LeftStickWalkThreshold > th.LeftStickRunThreshold || th.LeftStickRunThreshold > th.LeftStickSprintThreshold {
		return errors.New("thresholds: left stick walk <= run <= sprint is required")
	}

	// Parry
	if err := validateWindow("parry.window", c.Parry.Window); err != nil {
		return err
	}
	if c.Parry.Trigger != TriggerLeft && c.Parry.Trigger != TriggerRight {
		return fmt.Errorf("parry.trigger must be %q or %q", TriggerLeft, TriggerRight)
	}

	// Dodge
	if _, ok := buttonMaskByName(c.Dodge.Button); !ok {
		return fmt.Errorf("dodge.button: unknown button %q", c.Dodge.Button)
	}
	if err := validateWindow("dodge.invulnerability", c.Dodge.Invulnerability); err != nil {
		return err
	}

	// Display
	for name, v := range map[string]string{
		"lines":          c.Display.Colors.Lines,
		"highlight":      c.Display.Colors.Highlight,
		"parry_active":   c.Display.Colors.ParryActive,
		"parry_inactive": c.Display.Colors.ParryInactive,
	} {
		if _, err := ParseColor(v); err != nil {
			return fmt.Errorf("display.colors.%s: %w", name, err)
		}
	}

	// Server
	if c.Server.HTTPAddr != "" && !strings.HasPrefix(c.Server.WSPath, "/") {
		return errors.New("server.ws_path must start with /")
	}

	// Logging
	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}

	return nil
}

// validateWindow enforces 0 <= active_start <= active_end <= duration.
func validateWindow(name string, w ButtonTimerConfig) error {
	if w.ActiveStartMS > w.ActiveEndMS {
		return fmt.Errorf("%s.active_start_ms must be <= active_end_ms", name)
	}
	if w.DurationMS != 0 && w.ActiveEndMS > w.DurationMS {
		return fmt.Errorf("%s.active_end_ms must be <= duration_ms", name)
	}
	if w.NumSegments < 0 {
		return fmt.Errorf("%s.num_segments must be >= 0", name)
	}
	return nil
}

// TrackerConfig derives the tracker's view of the config. Call after Validate.
func (c *Config) TrackerConfig() TrackerConfig {
	mask, _ := buttonMaskByName(c.Dodge.Button)
	return TrackerConfig{
		Thresholds:   c.Thresholds,
		ParryTrigger: c.Parry.Trigger,
		Parry:        c.Parry.Window,
		DodgeButton:  mask,
		DodgeRelease: ButtonTimerConfig{DurationMS: c.Dodge.ReleaseDurationMS},
		DodgeInvuln:  c.Dodge.Invulnerability,
	}
}

// RGB is an 8-bit per channel color.
type RGB struct {
	R, G, B uint8
}

// ParseColor parses "#rrggbb".
func ParseColor(s string) (RGB, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ExpandPath expands a leading "~" in a path using $HOME.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
