package commandmanager

import (
	"context"
	"time"
)

// CommandConfig describes a single invocation of an external command.
// Arguments are always passed as an array; nothing is ever routed
// through a shell.
type CommandConfig struct {
	Command string
	Args    []string
	Stdin   string
}

// CommandResult encapsulates the results from a command execution.
type CommandResult struct {
	Command   string
	STDOUT    string
	STDERR    string
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// CommandManager provides methods to execute commands on the local system.
type CommandManager interface {
	// Run executes a command and captures its output.
	Run(ctx context.Context, config CommandConfig) (CommandResult, error)
}
