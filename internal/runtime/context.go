package runtime

import (
	"fmt"
	"io"
	"os"
	"strings"

	"imgpub/internal/credentials"
	"imgpub/internal/version"
)

const (
	DefaultRegistry = "ghcr.io"
	DefaultPlatform = "linux/amd64,linux/arm64"
	DefaultAPIURL   = "https://api.github.com"
	DefaultChannel  = "latest"
)

// Context captures the environment a publish run works against. It is read
// once after the credentials file has been exported.
type Context struct {
	Registry string // e.g. ghcr.io
	Repo     string // namespace under the registry, defaults to the username
	Platform string // comma separated buildx platforms
	Root     string // directory holding docker/<image>/Dockerfile
	APIURL   string // GitHub REST base

	Credentials credentials.Credentials

	DryRun bool
	Bump   version.Bump
}

// LoadContext builds a Context from environment variables:
//
//	REGISTRY, REPO, PLATFORM, IMGPUB_ROOT, GITHUB_API_URL,
//	IMGPUB_DRY_RUN, IMGPUB_BUMP
func LoadContext(creds credentials.Credentials) (Context, error) {
	bump, err := version.ParseBump(os.Getenv("IMGPUB_BUMP"))
	if err != nil {
		return Context{}, err
	}

	ctx := Context{
		Registry:    strings.TrimRight(getenv("REGISTRY", DefaultRegistry), "/"),
		Repo:        strings.Trim(strings.ToLower(getenv("REPO", creds.Username)), "/"),
		Platform:    getenv("PLATFORM", DefaultPlatform),
		Root:        getenv("IMGPUB_ROOT", "."),
		APIURL:      strings.TrimRight(getenv("GITHUB_API_URL", DefaultAPIURL), "/"),
		Credentials: creds,
		DryRun:      os.Getenv("IMGPUB_DRY_RUN") == "true",
		Bump:        bump,
	}
	if ctx.Repo == "" {
		return Context{}, fmt.Errorf("REPO is empty and no username to default it from")
	}
	return ctx, nil
}

// Owner is the GitHub account that owns the packages: the first path
// segment of Repo.
func (c Context) Owner() string {
	owner, _, _ := strings.Cut(c.Repo, "/")
	return owner
}

// ImageName is the repository path of an image without registry or tag,
// e.g. "octo/pytorch".
func (c Context) ImageName(image string) string {
	return c.Repo + "/" + image
}

// PrintSummary emits a scannable report of what the run will use. The token
// is only ever shown masked.
func (c Context) PrintSummary(w io.Writer, images []string, tags []string) {
	fmt.Fprintln(w, "Publish Summary")
	fmt.Fprintln(w, "---------------")

	fmt.Fprintln(w, "Registry")
	fmt.Fprintf(w, "  Registry              : %s\n", c.Registry)
	fmt.Fprintf(w, "  Repository            : %s\n", formatOrNone(c.Repo))
	fmt.Fprintf(w, "  Username              : %s\n", formatOrNone(c.Credentials.Username))
	fmt.Fprintf(w, "  Token                 : %s\n", credentials.Mask(c.Credentials.Token))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Build")
	fmt.Fprintf(w, "  Images                : %s\n", formatOrNone(strings.Join(images, ", ")))
	fmt.Fprintf(w, "  Tags                  : %s\n", formatOrNone(strings.Join(tags, ", ")))
	fmt.Fprintf(w, "  Platforms             : %s\n", c.Platform)
	fmt.Fprintf(w, "  Build Root            : %s\n", c.Root)
	fmt.Fprintf(w, "  Dry Run Mode          : %s\n", emoji(c.DryRun))
	fmt.Fprintln(w)
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
