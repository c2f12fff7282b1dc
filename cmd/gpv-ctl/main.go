package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
)

// ============================================================================
// gpv-ctl - Command-line IPC Client
// ============================================================================
// This tool sends commands to the gamepadviewer daemon via IPC.
//
// Usage:
//   gpv-ctl select-controller 1
//   gpv-ctl toggle-text
//   gpv-ctl reset
//   gpv-ctl save [path]
//   gpv-ctl reload
//   gpv-ctl state
//
// Options:
//   -socket PATH    Unix domain socket path (default: /tmp/gamepadviewer.sock)
// ============================================================================

// Action types (duplicated from the daemon for a standalone binary)
type Action interface{}

type SelectController struct {
	ID int `json:"id"`
}

type ToggleShowText struct{}

type ResetTimers struct{}

type SaveConfig struct {
	Path string `json:"path,omitempty"`
}

type ReloadConfig struct{}

type GetState struct{}

// ActionEnvelope wraps actions for JSON
type ActionEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// IPCResponse represents the daemon's response. State is kept raw; this tool
// only pretty-prints it.
type IPCResponse struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	State  json.RawMessage `json:"state,omitempty"`
}

func main() {
	socketPath := "/tmp/gamepadviewer.sock"

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if args[0] == "-socket" || args[0] == "--socket" {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: -socket requires an argument\n")
			os.Exit(1)
		}
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var action Action

	switch args[0] {
	case "select-controller", "controller":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: select-controller requires an index\n")
			os.Exit(1)
		}
		id, err := strconv.Atoi(args[1])
		if err != nil || id < 0 {
			fmt.Fprintf(os.Stderr, "error: invalid controller index: %s\n", args[1])
			os.Exit(1)
		}
		action = SelectController{ID: id}

	case "toggle-text", "text":
		action = ToggleShowText{}

	case "reset":
		action = ResetTimers{}

	case "save":
		var a SaveConfig
		if len(args) >= 2 {
			a.Path = args[1]
		}
		action = a

	case "reload":
		action = ReloadConfig{}

	case "state":
		action = GetState{}

	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	resp, err := sendAction(socketPath, action)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if len(resp.State) > 0 {
		var out bytes.Buffer
		if err := json.Indent(&out, resp.State, "", "  "); err != nil {
			fmt.Printf("%s\n", resp.State)
			return
		}
		fmt.Println(out.String())
		return
	}

	fmt.Println("ok")
}

func sendAction(socketPath string, action Action) (IPCResponse, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return IPCResponse{}, fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	data, err := marshalAction(action)
	if err != nil {
		return IPCResponse{}, fmt.Errorf("marshal action: %w", err)
	}

	// Line-delimited JSON
	if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
		return IPCResponse{}, fmt.Errorf("send action: %w", err)
	}

	var response IPCResponse
	if err := json.NewDecoder(conn).Decode(&response); err != nil {
		return IPCResponse{}, fmt.Errorf("decode response: %w", err)
	}

	if response.Status == "error" {
		return response, fmt.Errorf("daemon error: %s", response.Error)
	}

	return response, nil
}

func marshalAction(action Action) ([]byte, error) {
	var env ActionEnvelope

	switch a := action.(type) {
	case SelectController:
		env.Type = "select_controller"
		data, err := json.Marshal(a)
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
		if a.Path != "" {
			data, err := json.Marshal(a)
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
		return nil, fmt.Errorf("unknown action type: %T", action)
	}

	return json.Marshal(env)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `gpv-ctl - Control the gamepadviewer daemon via IPC

Usage:
  gpv-ctl [options] <command> [args]

Options:
  -socket PATH    Unix domain socket path (default: /tmp/gamepadviewer.sock)

Commands:
  select-controller, controller <n>   Poll controller n instead
  toggle-text, text                   Toggle accuracy text on overlays
  reset                               Stop all timers
  save [path]                         Save the config (default: the file the daemon loaded)
  reload                              Reload the config file
  state                               Print the current state as JSON
  help, -h, --help                    Show this help message

Examples:
  gpv-ctl select-controller 1
  gpv-ctl save ~/.config/gamepadviewer/config.toml
  gpv-ctl -socket /run/user/1000/gpv.sock state
`)
}
