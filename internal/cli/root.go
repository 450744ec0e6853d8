// Package cli wires the command line onto the publish workflow.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"imgpub/internal/credentials"
	"imgpub/internal/executil"
	"imgpub/internal/prompt"
	"imgpub/internal/registry"
	"imgpub/internal/runtime"
	"imgpub/internal/targets"
	"imgpub/internal/termlog"
	"imgpub/internal/version"
)

// RegistryClient is the registry surface the commands need.
type RegistryClient interface {
	Exists(ctx context.Context, ref string) bool
	Inspect(ctx context.Context, ref string) (registry.Artifact, error)
}

// Deps are the process-level collaborators. Zero values fall back to the
// real implementations; tests swap them out.
type Deps struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Runner overrides the docker/git runner (default: executil.Shell).
	Runner executil.Runner
	// Registry overrides the manifest client factory.
	Registry func(credentials.Credentials, *termlog.Logger) RegistryClient
}

func (d Deps) withDefaults() Deps {
	if d.Stdin == nil {
		d.Stdin = os.Stdin
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Registry == nil {
		d.Registry = func(c credentials.Credentials, l *termlog.Logger) RegistryClient {
			return registry.NewChecker(c, registry.WithLogger(l))
		}
	}
	return d
}

// flags shared by every command.
type globalFlags struct {
	envFile string
	tag     string
	channel string
	bump    string
	yes     bool
	dryRun  bool
	verbose bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(d Deps) *cobra.Command {
	d = d.withDefaults()
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "imgpub [flags] [image...]",
		Short: "Build and publish the ML images to GitHub Container Registry",
		Long: fmt.Sprintf(`imgpub builds the %s images for every configured platform,
pushes them under a versioned tag and a channel tag, and makes sure the
resulting GHCR packages are public.

With no images given, all of them are built in dependency order.
Credentials (GITHUB_USERNAME, GITHUB_TOKEN) and optional REGISTRY, REPO and
PLATFORM settings are read from a KEY=VALUE file.`, joinNames()),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		ValidArgs:     targets.Names(),
	}
	root.SetIn(d.Stdin)
	root.SetOut(d.Stdout)
	root.SetErr(d.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&g.envFile, "env-file", "", "credentials file (default: ./.env, then $XDG_CONFIG_HOME/imgpub/credentials.env)")
	pf.StringVarP(&g.tag, "tag", "t", "", "version tag (default: next semver after the latest git tag)")
	pf.StringVar(&g.channel, "channel", runtime.DefaultChannel, "second tag pushed alongside the version")
	pf.StringVar(&g.bump, "bump", "", "bump used to derive the version from git tags (major, minor, patch)")
	pf.BoolVarP(&g.yes, "yes", "y", false, "answer yes to every prompt")
	pf.BoolVar(&g.dryRun, "dry-run", false, "print docker/git commands instead of running them")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")

	p := &publishCmd{deps: d, g: g}
	f := root.Flags()
	f.BoolVar(&p.skipExisting, "skip-existing", false, "skip images whose version tag already exists without asking")
	f.BoolVar(&p.skipVisibility, "skip-visibility", false, "do not check package visibility after pushing")
	f.BoolVar(&p.gitTag, "git-tag", false, "create and push git tag v<version> after a successful run")
	root.RunE = p.run

	root.AddCommand(newStatusCmd(d, g))
	root.AddCommand(newVisibilityCmd(d, g))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the CLI against the real process environment.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd(Deps{})
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return err
}

// env is everything a command needs once credentials are in place.
type env struct {
	rt     runtime.Context
	log    *termlog.Logger
	runner executil.Runner
}

// setup loads credentials and the runtime context. It is the first thing
// every command does after argument validation and touches no network.
func setup(d Deps, g *globalFlags) (*env, error) {
	log := termlog.New(d.Stdout, g.verbose)

	path, err := credentials.Locate(g.envFile)
	if err != nil {
		return nil, err
	}
	creds, err := credentials.Load(path)
	if err != nil {
		return nil, err
	}
	log.Debug("config", "credentials loaded from %s", path)

	if g.bump != "" {
		if err := os.Setenv("IMGPUB_BUMP", g.bump); err != nil {
			return nil, err
		}
	}
	rt, err := runtime.LoadContext(creds)
	if err != nil {
		return nil, err
	}
	if g.dryRun {
		rt.DryRun = true
	}

	runner := d.Runner
	if runner == nil {
		sh := executil.NewShell(rt.DryRun)
		sh.Stdout, sh.Stderr = d.Stdout, d.Stderr
		runner = sh
	}
	return &env{rt: rt, log: log, runner: runner}, nil
}

// resolveTag returns the versioned tag: --tag as given, or the next semver
// after the highest git tag. gitVersion is nil when the tag is not semver.
func resolveTag(ctx context.Context, e *env, g *globalFlags) (tag string, gitVersion *version.Version, err error) {
	if g.tag != "" {
		tag, gitVersion = normalizeTag(g.tag)
		return tag, gitVersion, nil
	}
	cur, next, err := version.FromGit(ctx, e.runner, e.rt.Root, e.rt.Bump)
	if err != nil {
		return "", nil, fmt.Errorf("no --tag given and %w", err)
	}
	e.log.Info("version", "latest git tag %s, next %s (%s bump)", cur, next, e.rt.Bump)
	return next.String(), &next, nil
}

// normalizeTag drops the leading v of a semver tag so images are tagged
// 1.2.0 rather than v1.2.0. Other tags pass through with a nil version.
func normalizeTag(tag string) (string, *version.Version) {
	if v, err := version.Parse(tag); err == nil {
		return v.String(), &v
	}
	return tag, nil
}

func confirmer(d Deps, g *globalFlags) prompt.Confirmer {
	if g.yes {
		return prompt.Fixed(true)
	}
	return prompt.NewTerminal(d.Stdin, d.Stdout)
}

func joinNames() string {
	names := targets.Names()
	s := ""
	for i, n := range names {
		switch {
		case i == 0:
		case i == len(names)-1:
			s += " and "
		default:
			s += ", "
		}
		s += n
	}
	return s
}

// printError prints err once; cobra's own printing is silenced.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
}
