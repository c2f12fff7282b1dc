package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("gamepadviewer v%s\n", version)
	fmt.Println("Controller overlay daemon with parry and dodge timing meters")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gamepadviewer [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Polls a game controller, times parry and dodge inputs against their")
	fmt.Println("  in-game windows, and streams HUD frames to overlays over WebSocket.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Write a config template, edit it, then start with it")
	fmt.Println("  gamepadviewer -write-config ~/.config/gamepadviewer/config.yaml")
	fmt.Println("  gamepadviewer -config ~/.config/gamepadviewer/config.yaml")
	fmt.Println()
	fmt.Println("  # Linux: poll a specific gamepad")
	fmt.Println("  gamepadviewer -evdev-device /dev/input/by-id/usb-Microsoft_Controller-event-joystick")
	fmt.Println()
	fmt.Println("  # Watch the HUD in a terminal")
	fmt.Println("  gpv-overlay -url ws://127.0.0.1:3002/ws/state")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Linux: requires read access to the input device (add user to 'input' group)")
	fmt.Println("  - Config files may be .yaml, .yml, .json or .toml")
	fmt.Println()
}

func main() {
	var (
		configPath  = flag.String("config", "", "Config file (.yaml, .yml, .json, .toml)")
		writeConfig = flag.String("write-config", "", "Write the effective config to this path and exit")

		controllerID      = flag.Int("controller", 0, "Controller index to poll")
		pollingIntervalMS = flag.Int("polling-interval-ms", defaultPollingIntervalMS, "Controller polling interval in milliseconds")
		evdevDevice       = flag.String("evdev-device", "", "Linux: gamepad event device (replaces controller.evdev_devices)")

		triggerDeadZone  = flag.Int("trigger-dead-zone", defaultTriggerDeadZone, "Trigger dead zone (0-255)")
		triggerInclusive = flag.Bool("trigger-inclusive", false, "Count a trigger exactly at the dead zone as pressed")
		parryTrigger     = flag.String("parry-trigger", TriggerLeft, "Trigger that starts the parry timer: left|right")
		dodgeButton      = flag.String("dodge-button", "b", "Button whose release starts the dodge timers")
		showText         = flag.Bool("show-text", true, "Show accuracy text on overlays")

		httpAddr      = flag.String("http-addr", defaultHTTPAddr, "HTTP/WebSocket listen address (empty disables)")
		ipcSocketPath = flag.String("ipc-socket", defaultSocketPath, "Unix domain socket path for IPC")

		logLevelStr = flag.String("log-level", "info", "Log level: error, warn, info, debug")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Only flags given on the command line override the file.
	var o FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "controller":
			o.ControllerID = controllerID
		case "polling-interval-ms":
			o.PollingIntervalMS = pollingIntervalMS
		case "evdev-device":
			o.EvdevDevice = evdevDevice
		case "trigger-dead-zone":
			o.TriggerDeadZone = triggerDeadZone
		case "trigger-inclusive":
			o.TriggerInclusive = triggerInclusive
		case "parry-trigger":
			o.ParryTrigger = parryTrigger
		case "dodge-button":
			o.DodgeButton = dodgeButton
		case "show-text":
			o.ShowText = showText
		case "http-addr":
			o.HTTPAddr = httpAddr
		case "ipc-socket":
			o.IPCSocketPath = ipcSocketPath
		case "log-level":
			o.LogLevel = logLevelStr
		}
	})
	o.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error: invalid config:", err)
		os.Exit(1)
	}

	logLevel, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := SaveConfigFile(*writeConfig, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote", ExpandPath(*writeConfig))
		return
	}

	logger, levelVar := setupLogger(logLevel, os.Stdout)

	poller, err := newPlatformPoller(cfg.Controller, logger)
	if err != nil {
		logger.Error("failed to initialize controller input", "error", err)
		os.Exit(1)
	}
	defer poller.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Central event bus (IPC actions, snapshot requests).
	events := make(chan Event, 64)

	// Reducer broadcasts feed the WS broadcaster; without a server there is no consumer.
	var broadcasts chan StateBroadcast
	if cfg.Server.HTTPAddr != "" {
		broadcasts = make(chan StateBroadcast, 64)
	}

	state := NewViewerState(cfg, *configPath)

	var wg sync.WaitGroup
	goRun := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				logger.Error(name+" stopped", "error", err)
				stop()
			}
		}()
	}

	goRun("daemon", func() error {
		runDaemon(ctx, events, state, daemonDeps{
			Poller:     poller,
			Broadcasts: broadcasts,
			Overrides:  o,
			LevelVar:   levelVar,
			Logger:     logger,
		})
		return nil
	})

	if cfg.IPC.SocketPath != "" {
		goRun("IPC server", func() error {
			return runIPCServer(ctx, ExpandPath(cfg.IPC.SocketPath), events, logger)
		})
	}

	if cfg.Server.HTTPAddr != "" {
		stateServer := NewStateServer(logger, events, HubConfig{})
		mux := newHTTPMux(stateServer, cfg.Server.WSPath)

		goRun("ws hub", func() error {
			stateServer.Hub().Run(ctx)
			return nil
		})
		goRun("ws broadcaster", func() error {
			RunBroadcaster(ctx, stateServer.Hub(), broadcasts, logger)
			return nil
		})
		goRun("http server", func() error {
			return runHTTPServer(ctx, cfg.Server.HTTPAddr, mux, logger)
		})
	} else {
		logger.Info("http server disabled")
	}

	logger.Debug("starting gamepadviewer", "version", version)
	logger.Info("running",
		"controller_id", cfg.Controller.ID,
		"polling_interval_ms", cfg.Controller.PollingIntervalMS,
		"parry_trigger", cfg.Parry.Trigger,
		"dodge_button", cfg.Dodge.Button,
		"http_addr", cfg.Server.HTTPAddr,
		"ws_path", cfg.Server.WSPath,
		"ipc", cfg.IPC.SocketPath)

	<-ctx.Done()
	logger.Info("shutting down")
	wg.Wait()
}
