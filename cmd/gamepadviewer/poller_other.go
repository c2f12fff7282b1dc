//go:build !linux && !windows

package main

import "log/slog"

func newPlatformPoller(_ ControllerConfig, logger *slog.Logger) (ControllerPoller, error) {
	logger.Warn("no controller input backend on this platform; controller will show as disconnected")
	return newDisconnectedPoller(), nil
}
