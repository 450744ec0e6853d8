// Package visibility finds the GHCR package behind each published image and
// offers to make private packages public.
//
// The package can live under several endpoints depending on whether the
// owner is a user or an organization and on how GHCR named it, so lookups
// walk an ordered candidate list and the first hit wins.
package visibility

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"imgpub/internal/prompt"
	"imgpub/internal/termlog"
	"imgpub/pkg/github"
)

// Kind classifies one lookup.
type Kind int

const (
	NotFound Kind = iota
	Found
	TransientError
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case TransientError:
		return "error"
	default:
		return "not found"
	}
}

// Lookup is one owner endpoint + package name combination.
type Lookup struct {
	Owner github.Owner
	Name  string
}

// Result of a lookup or of the whole fold.
type Result struct {
	Kind       Kind
	Lookup     Lookup
	Visibility string
	Err        error
}

// Candidates lists lookups in probe order. repo is the registry namespace
// (e.g. "octo" or "ml-org/images"); the package path is repo without its
// owner segment plus the image name.
func Candidates(owner, repo, image string) []Lookup {
	names := []string{image}
	if rest := strings.TrimPrefix(strings.TrimPrefix(repo, owner), "/"); rest != "" {
		names = []string{rest + "/" + image, image}
	}

	owners := []github.Owner{
		{Kind: github.OwnerUser, Login: owner},
		{Kind: github.OwnerOrg, Login: owner},
		{Kind: github.OwnerSelf},
	}
	var out []Lookup
	for _, o := range owners {
		for _, n := range names {
			out = append(out, Lookup{Owner: o, Name: n})
		}
	}
	return out
}

// Probe runs a single lookup.
func Probe(ctx context.Context, pkgs github.PackagesService, l Lookup) Result {
	p, err := pkgs.Get(ctx, l.Owner, l.Name)
	switch {
	case err == nil:
		return Result{Kind: Found, Lookup: l, Visibility: p.Visibility}
	case github.IsStatus(err, http.StatusNotFound):
		return Result{Kind: NotFound, Lookup: l}
	default:
		return Result{Kind: TransientError, Lookup: l, Err: err}
	}
}

// Resolve folds over the candidates: the first Found wins. Without a hit the
// result is TransientError if any lookup errored, NotFound otherwise.
func Resolve(ctx context.Context, pkgs github.PackagesService, candidates []Lookup) Result {
	acc := Result{Kind: NotFound}
	for _, l := range candidates {
		r := Probe(ctx, pkgs, l)
		if r.Kind == Found {
			return r
		}
		if r.Kind == TransientError {
			acc = r
		}
	}
	return acc
}

// SettingsURL is where an owner can change the visibility by hand.
func SettingsURL(owner string, r Result) string {
	kind := github.OwnerUser
	login := owner
	if r.Lookup.Owner.Kind == github.OwnerOrg {
		kind = github.OwnerOrg
		login = r.Lookup.Owner.Login
	}
	name := r.Lookup.Name
	if name == "" {
		return fmt.Sprintf("https://github.com/%s?tab=packages", url.PathEscape(owner))
	}
	return fmt.Sprintf("https://github.com/%s/%s/packages/container/%s/settings", kind, url.PathEscape(login), url.PathEscape(name))
}

// Report is the outcome for one image.
type Report struct {
	Image      string
	Result     Result
	Visibility string // after reconciliation; "unknown" when unresolved
	Changed    bool
	ManualURL  string
}

// Reconciler checks and optionally flips package visibility.
type Reconciler struct {
	Packages github.PackagesService
	Confirm  prompt.Confirmer
	Log      *termlog.Logger
	Owner    string
	Repo     string
}

// Check resolves the visibility of image without changing anything.
func (r *Reconciler) Check(ctx context.Context, image string) Report {
	stop := r.logger().Spin("looking up package " + image)
	res := Resolve(ctx, r.Packages, Candidates(r.Owner, r.Repo, image))
	stop()

	rep := Report{Image: image, Result: res, Visibility: "unknown"}
	if res.Kind == Found {
		rep.Visibility = res.Visibility
	}
	return rep
}

// Reconcile reports the visibility of image's package and, for a private
// one, asks whether to make it public. Nothing here is fatal.
func (r *Reconciler) Reconcile(ctx context.Context, image string) Report {
	log := r.logger()
	rep := r.Check(ctx, image)
	res := rep.Result

	switch res.Kind {
	case NotFound:
		log.Warn("visibility", "%s: no package found under %s", image, r.Owner)
		return rep
	case TransientError:
		log.Warn("visibility", "%s: visibility unknown: %v", image, res.Err)
		return rep
	}

	log.Debug("visibility", "%s resolved via %s name %q", image, res.Lookup.Owner, res.Lookup.Name)
	if res.Visibility == github.VisibilityPublic {
		log.Success("visibility", "%s is public", image)
		return rep
	}

	rep.ManualURL = SettingsURL(r.Owner, res)
	log.Warn("visibility", "%s is %s", image, res.Visibility)
	if r.Confirm == nil || !r.Confirm.Confirm(fmt.Sprintf("Make package %s public?", res.Lookup.Name)) {
		log.Info("visibility", "left unchanged; change it at %s", rep.ManualURL)
		return rep
	}

	if err := r.Packages.SetVisibility(ctx, res.Lookup.Owner, res.Lookup.Name, github.VisibilityPublic); err != nil {
		log.Warn("visibility", "could not change %s: %v", image, err)
		log.Info("visibility", "change it manually at %s", rep.ManualURL)
		return rep
	}
	rep.Changed = true
	rep.Visibility = github.VisibilityPublic
	log.Success("visibility", "%s is now public", image)
	return rep
}

func (r *Reconciler) logger() *termlog.Logger {
	if r.Log == nil {
		return termlog.Discard()
	}
	return r.Log
}
