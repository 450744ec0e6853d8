// Package publish runs the build-and-publish workflow:
//
//	login → per target: existence check → (confirm override) → buildx build --push
//	      → optional git tag → visibility reconciliation for what was pushed
//
// Targets run strictly one after another in build order. A failed build
// aborts the run, since later images build FROM earlier ones; a declined
// override only skips that target.
package publish

import (
	"context"
	"fmt"
	"time"

	"imgpub/internal/docker"
	"imgpub/internal/executil"
	"imgpub/internal/prompt"
	"imgpub/internal/runtime"
	"imgpub/internal/targets"
	"imgpub/internal/termlog"
	"imgpub/internal/version"
	"imgpub/internal/visibility"
)

// Registry reports whether a ref is already pushed.
type Registry interface {
	Exists(ctx context.Context, ref string) bool
}

// Reconciler checks package visibility after a push.
type Reconciler interface {
	Reconcile(ctx context.Context, image string) visibility.Report
}

// Status of one target after the run.
type Status string

const (
	StatusBuilt   Status = "built"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

type Outcome struct {
	Plan   docker.Plan
	Status Status
	Err    error
}

type Result struct {
	Outcomes   []Outcome
	Visibility []visibility.Report
	GitTag     string
}

// Built returns the names of targets that were pushed.
func (r Result) Built() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == StatusBuilt {
			out = append(out, o.Plan.Target.Name)
		}
	}
	return out
}

// BuildError is returned when a target's build/push fails.
type BuildError struct {
	Target string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build of %s failed: %v", e.Target, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Options tune one run.
type Options struct {
	Tag     string // versioned tag, required
	Channel string // second tag; "" means latest

	SkipExisting   bool // never override an existing tag
	SkipVisibility bool

	// GitTag, when set, is created and pushed after every target succeeded.
	GitTag *version.Version
}

type Publisher struct {
	Context    runtime.Context
	Runner     executil.Runner
	Registry   Registry
	Reconciler Reconciler
	Confirm    prompt.Confirmer
	Log        *termlog.Logger
	Now        func() time.Time
}

// Plan resolves refs for every target without touching the network.
func (p *Publisher) Plan(ts []targets.BuildTarget, opts Options) ([]docker.Plan, error) {
	plans := make([]docker.Plan, 0, len(ts))
	for _, t := range ts {
		pl, err := docker.PlanTarget(p.Context, t, opts.Tag, opts.Channel)
		if err != nil {
			return nil, err
		}
		plans = append(plans, pl)
	}
	return plans, nil
}

// Run publishes ts in order.
func (p *Publisher) Run(ctx context.Context, ts []targets.BuildTarget, opts Options) (Result, error) {
	log := p.logger()
	var res Result

	plans, err := p.Plan(ts, opts)
	if err != nil {
		return res, err
	}

	if err := docker.Login(ctx, p.Runner, p.Context.Registry, p.Context.Credentials); err != nil {
		return res, err
	}
	log.Success("docker", "logged in to %s as %s", p.Context.Registry, p.Context.Credentials.Username)
	defer func() {
		if err := docker.Logout(context.WithoutCancel(ctx), p.Runner, p.Context.Registry); err != nil {
			log.Warn("docker", "%v", err)
		}
	}()

	revision := p.revision(ctx)

	for _, pl := range plans {
		name := pl.Target.Name
		log.Section(fmt.Sprintf("%s → %s", name, pl.Primary()))

		if p.exists(ctx, pl.Primary()) {
			if opts.SkipExisting || !p.confirm(fmt.Sprintf("%s already exists. Override?", pl.Primary())) {
				log.Info("skip", "%s already exists; skipping %s", pl.Primary(), name)
				res.Outcomes = append(res.Outcomes, Outcome{Plan: pl, Status: StatusSkipped})
				continue
			}
			log.Warn("build", "overriding existing %s", pl.Primary())
		}

		bo := docker.OptionsForPlan(p.Context, pl, pl.Tags()[0], revision, p.now())
		log.Info("build", "building %s for %s", name, bo.Platforms)
		if err := docker.BuildAndPush(ctx, p.Runner, bo); err != nil {
			res.Outcomes = append(res.Outcomes, Outcome{Plan: pl, Status: StatusFailed, Err: err})
			log.Error("build", "%s failed", name)
			return res, &BuildError{Target: name, Err: err}
		}
		res.Outcomes = append(res.Outcomes, Outcome{Plan: pl, Status: StatusBuilt})
		for _, r := range pl.Refs {
			log.Success("push", "%s", r)
		}
	}

	if opts.GitTag != nil && len(res.Built()) > 0 {
		if err := version.TagAndPush(ctx, p.Runner, p.Context.Root, *opts.GitTag, ""); err != nil {
			return res, err
		}
		res.GitTag = opts.GitTag.Tag()
		log.Success("git", "tagged %s", res.GitTag)
	}

	if !opts.SkipVisibility && p.Reconciler != nil {
		for _, name := range res.Built() {
			res.Visibility = append(res.Visibility, p.Reconciler.Reconcile(ctx, name))
		}
	}
	return res, nil
}

func (p *Publisher) exists(ctx context.Context, ref string) bool {
	if p.Registry == nil {
		return false
	}
	stop := p.logger().Spin("checking " + ref)
	defer stop()
	return p.Registry.Exists(ctx, ref)
}

func (p *Publisher) confirm(q string) bool {
	if p.Confirm == nil {
		return false
	}
	return p.Confirm.Confirm(q)
}

// revision is the HEAD commit of the build root, or "" outside a git checkout.
func (p *Publisher) revision(ctx context.Context) string {
	out, err := p.Runner.Output(ctx, executil.Cmd{Name: "git", Args: []string{"rev-parse", "HEAD"}, Dir: p.Context.Root})
	if err != nil {
		p.logger().Debug("git", "no revision: %v", err)
		return ""
	}
	return out
}

func (p *Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Publisher) logger() *termlog.Logger {
	if p.Log == nil {
		return termlog.Discard()
	}
	return p.Log
}
