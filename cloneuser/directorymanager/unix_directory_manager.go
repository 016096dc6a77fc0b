package directorymanager

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	cm "github.com/steelcutops/cloneuser/cloneuser/commandmanager"
)

// getent reports a missing key with exit status 2.
const getentStatusNotFound = 2

type UnixDirectoryManager struct {
	CommandManager cm.CommandManager
}

func (d *UnixDirectoryManager) LookupUser(ctx context.Context, username string) (User, bool, error) {
	output, err := d.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "getent",
		Args:    []string{"passwd", username},
	})
	if output.ExitCode == getentStatusNotFound {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("failed to query user database: %w", err)
	}

	user, err := parsePasswdLine(strings.TrimSpace(output.STDOUT))
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

func (d *UnixDirectoryManager) ListGroups(ctx context.Context) ([]Group, error) {
	output, err := d.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "getent",
		Args:    []string{"group"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate groups: %w", err)
	}

	lines := strings.Split(output.STDOUT, "\n")
	groups := []Group{}

	for _, line := range lines {
		parts := strings.Split(line, ":")
		if len(parts) < 4 {
			continue
		}

		gid, _ := strconv.Atoi(parts[2])

		members := []string{}
		if parts[3] != "" {
			members = strings.Split(parts[3], ",")
		}

		groups = append(groups, Group{
			Name:    parts[0],
			GID:     gid,
			Members: members,
		})
	}
	return groups, nil
}

func parsePasswdLine(line string) (User, error) {
	parts := strings.Split(line, ":")
	if len(parts) < 7 {
		return User{}, errors.New("unexpected passwd entry format")
	}

	uid, _ := strconv.Atoi(parts[2])
	gid, _ := strconv.Atoi(parts[3])

	return User{
		Username: parts[0],
		UID:      uid,
		GID:      gid,
		Comment:  parts[4],
		HomeDir:  parts[5],
		Shell:    parts[6],
	}, nil
}
