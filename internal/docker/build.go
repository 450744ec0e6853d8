// internal/docker/build.go
package docker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"imgpub/internal/executil"
)

// BuildAndPush runs one multi-platform buildx build; with opts.Push the
// result goes straight to the registry.
func BuildAndPush(ctx context.Context, r executil.Runner, opts *BuildOptions) error {
	cmd, err := BuildCommand(opts)
	if err != nil {
		return err
	}
	return r.Run(ctx, cmd)
}

// BuildCommand validates opts and assembles the docker buildx invocation.
func BuildCommand(opts *BuildOptions) (executil.Cmd, error) {
	if opts == nil {
		return executil.Cmd{}, errors.New("BuildImage: opts is nil")
	}
	if len(opts.FullRefs) == 0 {
		return executil.Cmd{}, errors.New("BuildImage: FullRefs must have at least one repo:tag")
	}
	if strings.TrimSpace(opts.Platforms) == "" {
		return executil.Cmd{}, errors.New("BuildImage: no target platforms")
	}

	df := strings.TrimSpace(opts.Dockerfile)
	if df == "" {
		return executil.Cmd{}, errors.New("BuildImage: Dockerfile is empty")
	}
	ctxPath := strings.TrimSpace(opts.ContextPath)
	if ctxPath == "" {
		ctxPath = "."
	}

	if !opts.DryRun {
		if st, err := os.Stat(df); err != nil || st.IsDir() {
			return executil.Cmd{}, fmt.Errorf("BuildImage: Dockerfile %q not found or not a file", df)
		}
		if st, err := os.Stat(ctxPath); err != nil || !st.IsDir() {
			return executil.Cmd{}, fmt.Errorf("BuildImage: context %q not found or not a directory", ctxPath)
		}
	}

	refs := dedupRefs(opts.FullRefs)
	for _, r := range refs {
		if strings.ToLower(r) != r || strings.ContainsAny(r, " \t\n") {
			return executil.Cmd{}, fmt.Errorf("BuildImage: invalid ref %q (must be lowercase, no spaces)", r)
		}
	}

	args := []string{"buildx", "build", "--platform", opts.Platforms, "--progress=plain"}
	for _, r := range refs {
		args = append(args, "-t", r)
	}
	args = append(args, "-f", df)
	if opts.Pull {
		args = append(args, "--pull")
	}
	if opts.NoCache {
		args = append(args, "--no-cache")
	}

	for _, kv := range ociLabels(opts) {
		args = append(args, "--label", kv[0]+"="+kv[1])
	}
	for _, kv := range opts.Labels {
		if kv[0] != "" {
			args = append(args, "--label", kv[0]+"="+kv[1])
		}
	}
	for _, kv := range opts.BuildArgs {
		if kv[0] != "" {
			args = append(args, "--build-arg", kv[0]+"="+kv[1])
		}
	}
	if opts.Push {
		args = append(args, "--push")
	}
	args = append(args, ctxPath)

	return executil.Cmd{
		Name:    "docker",
		Args:    args,
		Display: redactBuildArgs(args),
	}, nil
}

// ociLabels are the standard org.opencontainers.image.* labels. GHCR uses
// the source label to link a package to its repository.
func ociLabels(opts *BuildOptions) [][2]string {
	created := ""
	if !opts.Created.IsZero() {
		created = opts.Created.UTC().Format(time.RFC3339)
	}
	all := [][2]string{
		{ocispec.AnnotationTitle, opts.Title},
		{ocispec.AnnotationVersion, opts.Version},
		{ocispec.AnnotationRevision, opts.Revision},
		{ocispec.AnnotationSource, opts.Source},
		{ocispec.AnnotationCreated, created},
	}
	out := all[:0]
	for _, kv := range all {
		if kv[1] != "" {
			out = append(out, kv)
		}
	}
	return out
}
