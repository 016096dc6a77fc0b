package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/steelcutops/cloneuser/cloneuser/clonemanager"
	"github.com/steelcutops/cloneuser/cloneuser/commandmanager"
	"github.com/steelcutops/cloneuser/cloneuser/directorymanager"
	"github.com/steelcutops/cloneuser/cloneuser/profilemanager"
	"github.com/steelcutops/cloneuser/logger"
)

var programLevel = new(slog.LevelVar)

type flags struct {
	CloneUser   string
	NewUser     string
	FullName    string
	ProfilePath string
	AssumeYes   bool
	DryRun      bool
	Debug       bool
	LogFileName string
}

func parseFlags() *flags {
	f := &flags{}
	flag.StringVar(&f.CloneUser, "clone-user", "", "The user used as reference for group membership")
	flag.StringVar(&f.NewUser, "new-user", "", "The new user to create")
	flag.StringVar(&f.FullName, "full-name", "", "The full name of the new user")
	flag.StringVar(&f.ProfilePath, "profile", "", "Path to INI file with provisioning defaults")
	flag.BoolVar(&f.AssumeYes, "yes", false, "Skip the confirmation prompt")
	flag.BoolVar(&f.DryRun, "dry-run", false, "Display the useradd command without executing it")
	flag.BoolVar(&f.Debug, "debug", false, "Enable debug log level")
	flag.StringVar(&f.LogFileName, "log", "", "Audit log file name")

	flag.Parse()

	return f
}

func configureLogger(f *flags) {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: programLevel})
	slog.SetDefault(slog.New(h))

	if f.Debug {
		programLevel.Set(slog.LevelDebug)
	} else {
		programLevel.Set(slog.LevelWarn)
	}
}

// openAuditLog returns a logrus logger appending to the configured file,
// or one that discards everything when no file was requested.
func openAuditLog(f *flags) (*logrus.Logger, func(), error) {
	audit := logrus.New()

	if f.LogFileName == "" {
		audit.SetOutput(io.Discard)
		return audit, func() {}, nil
	}

	file, err := os.OpenFile(f.LogFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	audit.SetOutput(file)
	if f.Debug {
		audit.SetLevel(logrus.DebugLevel)
	}

	return audit, func() { file.Close() }, nil
}

func main() {
	f := parseFlags()
	configureLogger(f)

	if f.CloneUser == "" || f.NewUser == "" {
		fmt.Fprintln(os.Stderr, "both -clone-user and -new-user are required")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f *flags) error {
	audit, closeAudit, err := openAuditLog(f)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer closeAudit()

	var profile profilemanager.Profile
	if f.ProfilePath != "" {
		profile, err = profilemanager.Load(f.ProfilePath)
		if err != nil {
			return err
		}
	}

	if !f.AssumeYes && !f.DryRun && !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("confirmation requires a terminal; rerun with -yes or -dry-run")
	}

	commands := &commandmanager.UnixCommandManager{}
	manager := clonemanager.New(
		&directorymanager.UnixDirectoryManager{CommandManager: commands},
		commands,
		profile,
	)
	manager.Log = logger.FromSlog(slog.Default())

	req := clonemanager.CloneRequest{
		SourceUser: f.CloneUser,
		NewUser:    f.NewUser,
		FullName:   f.FullName,
		AssumeYes:  f.AssumeYes,
		DryRun:     f.DryRun,
	}

	ui := clonemanager.NewStdUI(os.Stdin, os.Stdout)
	result, err := manager.Clone(context.Background(), req, ui)

	entry := audit.WithFields(logrus.Fields{
		"clone_user": f.CloneUser,
		"new_user":   f.NewUser,
	})
	if err != nil {
		entry.Error(err)
		return err
	}

	entry = entry.WithField("groups", strings.Join(result.Groups, ","))
	switch {
	case result.Cancelled:
		entry.Info("operation cancelled by operator")
	case f.DryRun:
		entry.Info("dry run, no changes made")
	default:
		entry.Info("user created")
	}

	return nil
}
