// internal/docker/options.go
//
// Adapts a runtime.Context and a Plan into concrete BuildOptions.

package docker

import (
	"os"
	"strings"
	"time"

	"imgpub/internal/runtime"
)

// BaseImage is the target every other image builds FROM.
const BaseImage = "base"

// OptionsForPlan assembles BuildOptions for one planned target.
//
// Build args handed to every Dockerfile:
//   - REGISTRY, REPO, IMAGE_VERSION
//   - BASE_IMAGE: the base image at the same version, for images layered on it
func OptionsForPlan(c runtime.Context, p Plan, imageVersion, revision string, now time.Time) *BuildOptions {
	args := [][2]string{
		{"REGISTRY", c.Registry},
		{"REPO", c.Repo},
		{"IMAGE_VERSION", imageVersion},
	}
	if p.Target.Name != BaseImage {
		base := strings.TrimRight(c.Registry, "/") + "/" + c.ImageName(BaseImage) + ":" + cleanTag(imageVersion)
		args = append(args, [2]string{"BASE_IMAGE", base})
	}

	return &BuildOptions{
		Dockerfile:  p.Target.DockerfilePath(c.Root),
		ContextPath: c.Root,
		Platforms:   c.Platform,
		BuildArgs:   args,
		FullRefs:    p.Refs,
		Title:       p.Target.Name,
		Version:     imageVersion,
		Revision:    revision,
		Source:      os.Getenv("IMGPUB_SOURCE"),
		Created:     now,
		Pull:        os.Getenv("IMGPUB_PULL") == "true",
		NoCache:     os.Getenv("IMGPUB_NOCACHE") == "true",
		Push:        true,
		DryRun:      c.DryRun,
	}
}
