package cli

import (
	"github.com/spf13/cobra"

	"imgpub/internal/targets"
	"imgpub/internal/visibility"
	"imgpub/pkg/github"
)

func newVisibilityCmd(d Deps, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "visibility [image...]",
		Short:     "Check package visibility and offer to make private packages public",
		ValidArgs: targets.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := targets.Select(args)
			if err != nil {
				return err
			}
			e, err := setup(d, g)
			if err != nil {
				return err
			}
			gh, err := github.NewClient(e.rt.APIURL, e.rt.Credentials.Token)
			if err != nil {
				return err
			}
			rec := &visibility.Reconciler{
				Packages: gh.Packages,
				Confirm:  confirmer(d, g),
				Log:      e.log,
				Owner:    e.rt.Owner(),
				Repo:     e.rt.Repo,
			}
			for _, t := range ts {
				rec.Reconcile(cmd.Context(), t.Name)
			}
			return nil
		},
	}
}
