package version

import (
	"context"
	"fmt"
	"strings"

	"imgpub/internal/executil"
)

// FromGit forecasts the next version from the local repository's tags.
func FromGit(ctx context.Context, r executil.Runner, dir string, b Bump) (current, next Version, err error) {
	out, err := r.Output(ctx, executil.Cmd{Name: "git", Args: []string{"tag", "--list"}, Dir: dir})
	if err != nil {
		return Version{}, Version{}, fmt.Errorf("list git tags: %w", err)
	}
	current, next = Next(strings.Fields(out), b)
	return current, next, nil
}

// TagAndPush creates an annotated vX.Y.Z tag on HEAD and pushes it to origin.
func TagAndPush(ctx context.Context, r executil.Runner, dir string, v Version, message string) error {
	if message == "" {
		message = "Release " + v.Tag()
	}
	if err := r.Run(ctx, executil.Cmd{Name: "git", Args: []string{"tag", "-a", v.Tag(), "-m", message}, Dir: dir}); err != nil {
		return fmt.Errorf("create git tag %s: %w", v.Tag(), err)
	}
	if err := r.Run(ctx, executil.Cmd{Name: "git", Args: []string{"push", "origin", v.Tag()}, Dir: dir}); err != nil {
		return fmt.Errorf("push git tag %s: %w", v.Tag(), err)
	}
	return nil
}
