package commandmanager

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

type UnixCommandManager struct{}

func (u *UnixCommandManager) Run(ctx context.Context, config CommandConfig) (CommandResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, config.Command, config.Args...)
	if config.Stdin != "" {
		cmd.Stdin = strings.NewReader(config.Stdin)
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Executing local command", "command", config.Command, "args", config.Args)
	err := cmd.Run()

	result := CommandResult{
		Command:   config.Command,
		STDOUT:    stdout.String(),
		STDERR:    stderr.String(),
		ExitCode:  getExitCode(err),
		Duration:  time.Since(start),
		Timestamp: start,
	}

	return result, err
}

func getExitCode(err error) int {
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			status := exitError.Sys().(syscall.WaitStatus)
			return status.ExitStatus()
		}
	}
	return 0
}
