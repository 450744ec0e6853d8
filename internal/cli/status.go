package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"imgpub/internal/docker"
	"imgpub/internal/registry"
	"imgpub/internal/targets"
	"imgpub/internal/visibility"
	"imgpub/pkg/github"
)

func newStatusCmd(d Deps, g *globalFlags) *cobra.Command {
	var (
		output         string
		skipVisibility bool
	)
	cmd := &cobra.Command{
		Use:       "status [image...]",
		Short:     "Show what the registry holds for each image",
		Long:      "Inspects the manifest behind --tag (or the channel tag when --tag is empty) and reports digest, platforms, size and package visibility.",
		ValidArgs: targets.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (valid: table, json, yaml)", output)
			}
			ts, err := targets.Select(args)
			if err != nil {
				return err
			}
			e, err := setup(d, g)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			tag, _ := normalizeTag(g.tag)
			if tag == "" {
				tag = g.channel
			}

			reg := d.Registry(e.rt.Credentials, e.log)
			var rec *visibility.Reconciler
			if !skipVisibility {
				gh, err := github.NewClient(e.rt.APIURL, e.rt.Credentials.Token)
				if err != nil {
					return err
				}
				if u, err := gh.Users.Me(ctx); err != nil {
					e.log.Warn("github", "token check failed: %v", err)
				} else {
					e.log.Debug("github", "authenticated as %s", u.Login)
				}
				rec = &visibility.Reconciler{Packages: gh.Packages, Log: e.log, Owner: e.rt.Owner(), Repo: e.rt.Repo}
			}

			arts := make([]registry.Artifact, 0, len(ts))
			for _, t := range ts {
				pl, err := docker.PlanTarget(e.rt, t, tag, g.channel)
				if err != nil {
					return err
				}
				art, err := reg.Inspect(ctx, pl.Primary())
				if err != nil {
					return err
				}
				if rec != nil {
					art.Visibility = rec.Check(ctx, t.Name).Visibility
				}
				arts = append(arts, art)
			}
			return writeArtifacts(cmd.OutOrStdout(), output, arts)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	cmd.Flags().BoolVar(&skipVisibility, "skip-visibility", false, "do not query package visibility")
	return cmd
}

func writeArtifacts(w io.Writer, format string, arts []registry.Artifact) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(arts)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(arts); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REFERENCE\tEXISTS\tDIGEST\tPLATFORMS\tSIZE\tVISIBILITY")
	for _, a := range arts {
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\t%s\n",
			a.Reference, a.Exists, shortDigest(a.Digest), orDash(strings.Join(a.Platforms, ",")), humanSize(a.Size), orDash(a.Visibility))
	}
	return tw.Flush()
}

func shortDigest(d string) string {
	if _, hex, ok := strings.Cut(d, ":"); ok && len(hex) > 12 {
		return d[:len(d)-len(hex)] + hex[:12]
	}
	return orDash(d)
}

func humanSize(n int64) string {
	if n <= 0 {
		return "-"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
