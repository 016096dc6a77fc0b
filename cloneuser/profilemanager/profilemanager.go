package profilemanager

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// DefaultUseraddCommand is used when the profile does not name a binary.
const DefaultUseraddCommand = "useradd"

// Profile carries site defaults for account creation, typically shipped
// in the device image alongside this tool. The zero value is a valid
// profile that changes nothing.
type Profile struct {
	Shell         string   // overrides the source account's shell when set
	SkelDir       string   // skeleton directory passed to useradd when set
	UseraddPath   string   // alternate useradd binary
	ExtraGroups   []string // always added to the derived group set
	ExcludeGroups []string // removed from the derived group set
}

// Load reads a provisioning profile from an INI file.
func Load(path string) (Profile, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	defaults := cfg.Section("defaults")
	groups := cfg.Section("groups")

	return Profile{
		Shell:         defaults.Key("shell").String(),
		SkelDir:       defaults.Key("skel").String(),
		UseraddPath:   defaults.Key("useradd").String(),
		ExtraGroups:   splitGroupList(groups.Key("extra").String()),
		ExcludeGroups: splitGroupList(groups.Key("exclude").String()),
	}, nil
}

// UseraddCommand returns the configured useradd binary, falling back to
// a plain PATH lookup.
func (p Profile) UseraddCommand() string {
	if p.UseraddPath != "" {
		return p.UseraddPath
	}
	return DefaultUseraddCommand
}

// ApplyGroups filters the excluded groups out of the given set and
// appends the extra groups, deduplicated, preserving order.
func (p Profile) ApplyGroups(groups []string) []string {
	excluded := make(map[string]bool, len(p.ExcludeGroups))
	for _, name := range p.ExcludeGroups {
		excluded[name] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, name := range groups {
		if excluded[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, name := range p.ExtraGroups {
		if excluded[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func splitGroupList(raw string) []string {
	var out []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
