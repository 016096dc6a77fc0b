package directorymanager

import "context"

// User represents an individual user account on the system.
type User struct {
	Username string // user login name
	UID      int    // user ID
	GID      int    // group ID
	Comment  string // user full name or comment
	HomeDir  string // user home directory
	Shell    string // user's shell
}

// Group represents a single group database entry.
type Group struct {
	Name    string   // group name
	GID     int      // group ID
	Members []string // login names of the explicit members
}

// DirectoryManager encompasses read-only lookups against the system
// user and group databases.
type DirectoryManager interface {
	// LookupUser fetches a user by login name. The boolean reports whether
	// the account exists; absence is an expected outcome, not an error.
	LookupUser(ctx context.Context, username string) (User, bool, error)

	// ListGroups enumerates every entry in the group database.
	ListGroups(ctx context.Context) ([]Group, error)
}
