package clonemanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	multierror "github.com/hashicorp/go-multierror"

	cm "github.com/steelcutops/cloneuser/cloneuser/commandmanager"
	dm "github.com/steelcutops/cloneuser/cloneuser/directorymanager"
	pm "github.com/steelcutops/cloneuser/cloneuser/profilemanager"
	"github.com/steelcutops/cloneuser/logger"
)

// Failure classes for the validation gates. Each one terminates the run;
// nothing is retried.
var (
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
	ErrSourceNotFound        = errors.New("clone source user not found")
	ErrTargetExists          = errors.New("new user already exists")
	ErrCreationFailed        = errors.New("user creation failed")
)

// userNamePattern matches the account names useradd accepts.
var userNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]*\$?$`)

const maxUserNameLen = 32

// CloneRequest describes one account-cloning run.
type CloneRequest struct {
	SourceUser string // reference account for group membership
	NewUser    string // account to create
	FullName   string // optional GECOS comment
	AssumeYes  bool   // skip the confirmation prompt
	DryRun     bool   // display the command without prompting or executing
}

// CloneResult reports what a run did. Operator cancellation is a clean
// result, not an error.
type CloneResult struct {
	Cancelled bool
	Command   []string
	Groups    []string
}

// CloneManager drives the linear clone procedure: privilege gate, source
// and target lookups, group derivation, command construction,
// confirmation, execution and post-check.
type CloneManager struct {
	Directory      dm.DirectoryManager
	CommandManager cm.CommandManager
	Profile        pm.Profile
	Log            logger.Logger

	// Euid reports the effective user ID of the process. Overridable in
	// tests; defaults to os.Geteuid.
	Euid func() int
}

func New(directory dm.DirectoryManager, commands cm.CommandManager, profile pm.Profile) *CloneManager {
	return &CloneManager{
		Directory:      directory,
		CommandManager: commands,
		Profile:        profile,
		Log:            logger.New(),
		Euid:           os.Geteuid,
	}
}

// Clone runs the whole procedure. The gates fire strictly in order and
// every failure is terminal: privilege, name validation, source exists,
// target absent, confirmation, execution, post-check.
func (c *CloneManager) Clone(ctx context.Context, req CloneRequest, ui UI) (CloneResult, error) {
	if c.Euid() != 0 {
		return CloneResult{}, ErrInsufficientPrivilege
	}

	if err := ValidateNames(req.SourceUser, req.NewUser); err != nil {
		return CloneResult{}, err
	}

	source, found, err := c.Directory.LookupUser(ctx, req.SourceUser)
	if err != nil {
		return CloneResult{}, fmt.Errorf("failed to look up clone source user [%s]: %w", req.SourceUser, err)
	}
	if !found {
		return CloneResult{}, fmt.Errorf("%w: [%s]", ErrSourceNotFound, req.SourceUser)
	}

	_, found, err = c.Directory.LookupUser(ctx, req.NewUser)
	if err != nil {
		return CloneResult{}, fmt.Errorf("failed to look up new user [%s]: %w", req.NewUser, err)
	}
	if found {
		return CloneResult{}, fmt.Errorf("%w: [%s]", ErrTargetExists, req.NewUser)
	}

	groups, err := c.Directory.ListGroups(ctx)
	if err != nil {
		return CloneResult{}, err
	}

	memberOf := c.Profile.ApplyGroups(DeriveGroups(groups, source.Username))
	c.Log.Debug("Derived supplementary groups", "source", source.Username, "groups", strings.Join(memberOf, ","))

	config := c.buildCommand(req, source, memberOf)
	display := append([]string{config.Command}, config.Args...)

	ui.Println("Command to run:")
	ui.Printf("    %s\n\n", strings.Join(display, " "))

	if req.DryRun {
		return CloneResult{Command: display, Groups: memberOf}, nil
	}

	if !req.AssumeYes {
		ok, err := ui.Confirm("Shall we proceed?")
		if err != nil {
			return CloneResult{}, fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			ui.Println("Operation cancelled.")
			return CloneResult{Cancelled: true, Command: display, Groups: memberOf}, nil
		}
	}

	result, err := c.CommandManager.Run(ctx, config)
	if err != nil {
		c.Log.Error("useradd invocation failed", "exit_code", result.ExitCode, "stderr", strings.TrimSpace(result.STDERR))
	}

	// The creation call is treated as atomic: the outcome is judged by
	// whether the account resolves afterward.
	_, found, err = c.Directory.LookupUser(ctx, req.NewUser)
	if err != nil {
		return CloneResult{}, fmt.Errorf("failed to verify new user [%s]: %w", req.NewUser, err)
	}
	if !found {
		return CloneResult{}, fmt.Errorf("%w: [%s]", ErrCreationFailed, req.NewUser)
	}

	ui.Printf("User [%s] has been successfully created.\n", req.NewUser)
	ui.Printf("Run 'passwd %s' to set a password.\n", req.NewUser)

	return CloneResult{Command: display, Groups: memberOf}, nil
}

// DeriveGroups returns the names of every group that lists source as an
// explicit member, skipping the group sharing the account's name. The
// skip models the usual one-primary-group-per-user convention, where the
// primary group carries the account name; that is a best-effort
// heuristic, not something every system guarantees. Enumeration order is
// preserved and duplicates are dropped.
func DeriveGroups(groups []dm.Group, source string) []string {
	var derived []string
	seen := make(map[string]bool)

	for _, g := range groups {
		if g.Name == source || seen[g.Name] {
			continue
		}
		for _, member := range g.Members {
			if member == source {
				derived = append(derived, g.Name)
				seen[g.Name] = true
				break
			}
		}
	}
	return derived
}

// ValidateNames checks both account names against the useradd naming
// rules and reports every violation at once.
func ValidateNames(source, target string) error {
	var result *multierror.Error

	for _, check := range []struct {
		label string
		name  string
	}{
		{"clone source user", source},
		{"new user", target},
	} {
		if check.name == "" {
			result = multierror.Append(result, fmt.Errorf("%s name must not be empty", check.label))
			continue
		}
		if len(check.name) > maxUserNameLen {
			result = multierror.Append(result, fmt.Errorf("%s name [%s] exceeds %d characters", check.label, check.name, maxUserNameLen))
		}
		if !userNamePattern.MatchString(check.name) {
			result = multierror.Append(result, fmt.Errorf("%s name [%s] is not a valid account name", check.label, check.name))
		}
	}

	if source != "" && source == target {
		result = multierror.Append(result, fmt.Errorf("clone source and new user must differ: [%s]", source))
	}

	return result.ErrorOrNil()
}

func (c *CloneManager) buildCommand(req CloneRequest, source dm.User, groups []string) cm.CommandConfig {
	shell := source.Shell
	if c.Profile.Shell != "" {
		shell = c.Profile.Shell
	}

	args := []string{"--shell", shell, "--create-home", "--user-group"}
	if c.Profile.SkelDir != "" {
		args = append(args, "--skel", c.Profile.SkelDir)
	}
	if len(groups) > 0 {
		args = append(args, "--groups", strings.Join(groups, ","))
	}
	if req.FullName != "" {
		args = append(args, "--comment", req.FullName)
	}
	args = append(args, req.NewUser)

	return cm.CommandConfig{
		Command: c.Profile.UseraddCommand(),
		Args:    args,
	}
}
