// internal/docker/types.go
package docker

import "time"

type BuildOptions struct {
	Dockerfile  string      // required
	ContextPath string      // default: "."
	Platforms   string      // e.g. "linux/amd64,linux/arm64"
	BuildArgs   [][2]string // KEY,VALUE (deterministic)
	Labels      [][2]string // optional, applied after the OCI defaults

	FullRefs []string // e.g. ["ghcr.io/octo/base:1.2.0","ghcr.io/octo/base:latest"]

	// OCI metadata; empty values are skipped.
	Title    string
	Version  string
	Revision string
	Source   string
	Created  time.Time

	Pull    bool // --pull
	NoCache bool // --no-cache
	Push    bool // --push; without it buildx only fills the cache
	DryRun  bool // skip filesystem checks; the runner decides whether to execute
}
