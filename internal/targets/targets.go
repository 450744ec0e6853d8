// Package targets enumerates the images this tool knows how to build.
package targets

import (
	"fmt"
	"path/filepath"
	"strings"
)

// BuildTarget is one buildable image.
type BuildTarget struct {
	Name       string
	Dockerfile string // relative to the build root
}

// DockerfilePath joins the Dockerfile onto root.
func (t BuildTarget) DockerfilePath(root string) string {
	return filepath.Join(root, t.Dockerfile)
}

// Later images use earlier ones as base layers, so this order is also the
// build order.
var all = []BuildTarget{
	{Name: "base", Dockerfile: filepath.Join("docker", "base", "Dockerfile")},
	{Name: "pytorch", Dockerfile: filepath.Join("docker", "pytorch", "Dockerfile")},
	{Name: "rs", Dockerfile: filepath.Join("docker", "rs", "Dockerfile")},
}

// All returns every target in build order.
func All() []BuildTarget {
	out := make([]BuildTarget, len(all))
	copy(out, all)
	return out
}

// Names returns the known image names in build order.
func Names() []string {
	out := make([]string, len(all))
	for i, t := range all {
		out[i] = t.Name
	}
	return out
}

// UnknownImageError reports an image name outside the known set.
type UnknownImageError struct {
	Name string
}

func (e *UnknownImageError) Error() string {
	return fmt.Sprintf("unknown image: %s (valid: %s)", e.Name, strings.Join(Names(), ", "))
}

// Select resolves names to targets. No names selects everything. Duplicates
// collapse and the result is always in build order.
func Select(names []string) ([]BuildTarget, error) {
	if len(names) == 0 {
		return All(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if !known(n) {
			return nil, &UnknownImageError{Name: n}
		}
		want[n] = true
	}
	var out []BuildTarget
	for _, t := range all {
		if want[t.Name] {
			out = append(out, t)
		}
	}
	return out, nil
}

func known(name string) bool {
	for _, t := range all {
		if t.Name == name {
			return true
		}
	}
	return false
}
