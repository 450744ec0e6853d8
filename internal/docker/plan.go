// internal/docker/plan.go
//
// The planner turns a target plus the resolved version into the refs the
// image is pushed under:
//
//	<registry>/<repo>/<image>:<version>
//	<registry>/<repo>/<image>:<channel>   (default channel "latest")
//
// The first ref is the one the existence check runs against.

package docker

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"imgpub/internal/runtime"
	"imgpub/internal/targets"
)

// Plan is the output of the planner for one target.
type Plan struct {
	Target targets.BuildTarget
	Repo   string   // registry/repo/image, no tag
	Refs   []string // fully-qualified repo:tag, versioned first
}

// Primary is the versioned ref.
func (p Plan) Primary() string {
	if len(p.Refs) == 0 {
		return ""
	}
	return p.Refs[0]
}

// Tags returns just the tag part of each ref.
func (p Plan) Tags() []string {
	out := make([]string, 0, len(p.Refs))
	for _, r := range p.Refs {
		out = append(out, strings.TrimPrefix(r, p.Repo+":"))
	}
	return out
}

// PlanTarget builds the refs for t. The version tag is required; an empty
// channel falls back to "latest".
func PlanTarget(ctx runtime.Context, t targets.BuildTarget, tag, channel string) (Plan, error) {
	repo := strings.TrimRight(ctx.Registry, "/") + "/" + ctx.ImageName(t.Name)

	tag = cleanTag(tag)
	if tag == "" || !validateTag(tag) {
		return Plan{}, fmt.Errorf("invalid image tag %q for %s", tag, t.Name)
	}
	if strings.TrimSpace(channel) == "" {
		channel = runtime.DefaultChannel
	}
	channel = cleanTag(channel)
	if !validateTag(channel) {
		return Plan{}, fmt.Errorf("invalid channel tag %q for %s", channel, t.Name)
	}

	refs := dedupRefs([]string{repo + ":" + tag, repo + ":" + channel})
	for _, r := range refs {
		if err := ValidateRef(r); err != nil {
			return Plan{}, err
		}
	}
	return Plan{Target: t, Repo: repo, Refs: refs}, nil
}

// ValidateRef checks r is a well-formed, tagged image reference.
func ValidateRef(r string) error {
	named, err := reference.ParseNormalizedNamed(r)
	if err != nil {
		return fmt.Errorf("invalid image reference %q: %w", r, err)
	}
	if _, ok := named.(reference.Tagged); !ok {
		return fmt.Errorf("image reference %q has no tag", r)
	}
	return nil
}
