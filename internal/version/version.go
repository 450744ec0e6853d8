package version

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Bump is a semantic version increment level.
type Bump string

const (
	Patch Bump = "patch"
	Minor Bump = "minor"
	Major Bump = "major"
)

func (b Bump) String() string {
	return string(b)
}

// ParseBump converts "major", "Minor", ... into a Bump.
func ParseBump(s string) (Bump, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "patch", "":
		return Patch, nil
	default:
		return "", fmt.Errorf("invalid bump type: %q. Must be one of: major, minor, patch", s)
	}
}

type Version struct {
	Major int
	Minor int
	Patch int
}

// String renders X.Y.Z without a "v" prefix; image tags never carry one.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tag renders the git tag form, vX.Y.Z.
func (v Version) Tag() string {
	return "v" + v.String()
}

// Parse parses "X.Y.Z" or "vX.Y.Z".
func Parse(s string) (Version, error) {
	core := strings.TrimPrefix(strings.TrimSpace(s), "v")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: expected X.Y.Z, got %s", s)
	}

	nums := make([]int, 3)
	for i, label := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return Version{}, fmt.Errorf("invalid %s version: %w", label, err)
		}
		if n < 0 {
			return Version{}, fmt.Errorf("invalid %s version: negative", label)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Increment returns v bumped by b. Unknown bumps leave v unchanged.
func (v Version) Increment(b Bump) Version {
	switch b {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v
	}
}

func (v Version) LessThan(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// Latest returns the highest semver among tags, skipping anything that does
// not parse. ok is false when no tag qualifies.
func Latest(tags []string) (latest Version, ok bool) {
	var parsed []Version
	for _, t := range tags {
		if v, err := Parse(t); err == nil {
			parsed = append(parsed, v)
		}
	}
	if len(parsed) == 0 {
		return Version{}, false
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].LessThan(parsed[j]) })
	return parsed[len(parsed)-1], true
}

// Next forecasts the version after the highest tag. With no tags it starts
// from 0.0.0.
func Next(tags []string, b Bump) (current, next Version) {
	current, _ = Latest(tags)
	return current, current.Increment(b)
}
