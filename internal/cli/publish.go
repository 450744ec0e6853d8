package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"imgpub/internal/publish"
	"imgpub/internal/targets"
	"imgpub/internal/termlog"
	"imgpub/internal/visibility"
	"imgpub/pkg/github"
)

type publishCmd struct {
	deps Deps
	g    *globalFlags

	skipExisting   bool
	skipVisibility bool
	gitTag         bool
}

func (p *publishCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Validate images before anything else so a typo never reaches docker.
	ts, err := targets.Select(args)
	if err != nil {
		return err
	}

	e, err := setup(p.deps, p.g)
	if err != nil {
		return err
	}

	tag, gitVersion, err := resolveTag(ctx, e, p.g)
	if err != nil {
		return err
	}

	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	e.rt.PrintSummary(e.log.Writer(), names, []string{tag, p.g.channel})

	confirm := confirmer(p.deps, p.g)
	pub := &publish.Publisher{
		Context:  e.rt,
		Runner:   e.runner,
		Registry: p.deps.Registry(e.rt.Credentials, e.log),
		Confirm:  confirm,
		Log:      e.log,
	}
	if !p.skipVisibility && !e.rt.DryRun {
		gh, err := github.NewClient(e.rt.APIURL, e.rt.Credentials.Token)
		if err != nil {
			return err
		}
		pub.Reconciler = &visibility.Reconciler{
			Packages: gh.Packages,
			Confirm:  confirm,
			Log:      e.log,
			Owner:    e.rt.Owner(),
			Repo:     e.rt.Repo,
		}
	}

	opts := publish.Options{
		Tag:            tag,
		Channel:        p.g.channel,
		SkipExisting:   p.skipExisting,
		SkipVisibility: p.skipVisibility,
	}
	if p.gitTag {
		if gitVersion == nil {
			return fmt.Errorf("--git-tag needs a semver version, got %q", tag)
		}
		opts.GitTag = gitVersion
	}

	res, err := pub.Run(ctx, ts, opts)
	printResult(e.log, res)
	return err
}

func printResult(log *termlog.Logger, res publish.Result) {
	if len(res.Outcomes) == 0 {
		return
	}
	log.Section("Result")
	for _, o := range res.Outcomes {
		log.Info(string(o.Status), "%s (%s)", o.Plan.Target.Name, strings.Join(o.Plan.Tags(), ", "))
	}
	if res.GitTag != "" {
		log.Info("git", "tag %s pushed", res.GitTag)
	}
	for _, v := range res.Visibility {
		log.Info("visibility", "%s: %s", v.Image, v.Visibility)
	}
}
