// Package registry answers questions about images already in the registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"

	"imgpub/internal/credentials"
	"imgpub/internal/termlog"
)

// Artifact is what the registry knows about one ref.
type Artifact struct {
	Reference  string   `json:"reference" yaml:"reference"`
	Exists     bool     `json:"exists" yaml:"exists"`
	Digest     string   `json:"digest,omitempty" yaml:"digest,omitempty"`
	MediaType  string   `json:"mediaType,omitempty" yaml:"mediaType,omitempty"`
	Platforms  []string `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	Size       int64    `json:"size,omitempty" yaml:"size,omitempty"`
	Visibility string   `json:"visibility,omitempty" yaml:"visibility,omitempty"`
}

// Checker queries manifests with the run's credentials.
type Checker struct {
	auth     authn.Authenticator
	insecure bool
	log      *termlog.Logger
}

type Option func(*Checker)

// WithInsecure allows plain-HTTP registries.
func WithInsecure() Option {
	return func(c *Checker) { c.insecure = true }
}

// WithLogger sets where lookup failures are reported in verbose mode.
func WithLogger(l *termlog.Logger) Option {
	return func(c *Checker) { c.log = l }
}

// NewChecker authenticates with basic auth when creds carry a token and
// falls back to anonymous access otherwise.
func NewChecker(creds credentials.Credentials, opts ...Option) *Checker {
	c := &Checker{auth: authn.Anonymous, log: termlog.Discard()}
	if creds.Token != "" {
		c.auth = authn.FromConfig(authn.AuthConfig{Username: creds.Username, Password: creds.Token})
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Exists reports whether ref's manifest can be fetched. Every failure,
// including 404, 401 and network errors, counts as "does not exist".
func (c *Checker) Exists(ctx context.Context, ref string) bool {
	r, err := c.parse(ref)
	if err != nil {
		c.log.Debug("registry", "bad reference %s: %v", ref, err)
		return false
	}
	if _, err := remote.Head(r, c.remoteOpts(ctx)...); err != nil {
		c.log.Debug("registry", "%s: %s", ref, describe(err))
		return false
	}
	return true
}

// Inspect fetches ref's manifest and sums config and layer sizes. For a
// multi-platform index, each platform image is summed.
func (c *Checker) Inspect(ctx context.Context, ref string) (Artifact, error) {
	art := Artifact{Reference: ref}
	r, err := c.parse(ref)
	if err != nil {
		return art, err
	}

	desc, err := remote.Get(r, c.remoteOpts(ctx)...)
	if err != nil {
		if IsNotFound(err) {
			return art, nil
		}
		return art, fmt.Errorf("fetch manifest %s: %w", ref, err)
	}
	art.Exists = true
	art.Digest = desc.Digest.String()
	art.MediaType = string(desc.MediaType)

	if desc.MediaType.IsIndex() {
		idx, err := desc.ImageIndex()
		if err != nil {
			return art, fmt.Errorf("read index %s: %w", ref, err)
		}
		im, err := idx.IndexManifest()
		if err != nil {
			return art, fmt.Errorf("read index manifest %s: %w", ref, err)
		}
		for _, m := range im.Manifests {
			// buildx attaches provenance manifests as unknown/unknown
			if m.Platform != nil && m.Platform.OS == "unknown" {
				continue
			}
			if m.Platform != nil {
				art.Platforms = append(art.Platforms, m.Platform.String())
			}
			img, err := idx.Image(m.Digest)
			if err != nil {
				return art, fmt.Errorf("read image %s@%s: %w", ref, m.Digest, err)
			}
			n, err := imageSize(img)
			if err != nil {
				return art, err
			}
			art.Size += n
		}
		return art, nil
	}

	img, err := desc.Image()
	if err != nil {
		return art, fmt.Errorf("read image %s: %w", ref, err)
	}
	if cfg, err := img.ConfigFile(); err == nil && cfg.OS != "" {
		p := v1.Platform{OS: cfg.OS, Architecture: cfg.Architecture, Variant: cfg.Variant}
		art.Platforms = []string{p.String()}
	}
	if art.Size, err = imageSize(img); err != nil {
		return art, err
	}
	return art, nil
}

func (c *Checker) parse(ref string) (name.Reference, error) {
	var opts []name.Option
	if c.insecure {
		opts = append(opts, name.Insecure)
	}
	return name.ParseReference(ref, opts...)
}

func (c *Checker) remoteOpts(ctx context.Context) []remote.Option {
	return []remote.Option{remote.WithAuth(c.auth), remote.WithContext(ctx)}
}

func imageSize(img v1.Image) (int64, error) {
	m, err := img.Manifest()
	if err != nil {
		return 0, fmt.Errorf("read manifest: %w", err)
	}
	total := m.Config.Size
	for _, l := range m.Layers {
		total += l.Size
	}
	return total, nil
}

// IsNotFound reports a 404 from the registry.
func IsNotFound(err error) bool {
	var terr *transport.Error
	return errors.As(err, &terr) && terr.StatusCode == http.StatusNotFound
}

func describe(err error) string {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return fmt.Sprintf("HTTP %d", terr.StatusCode)
	}
	return err.Error()
}
