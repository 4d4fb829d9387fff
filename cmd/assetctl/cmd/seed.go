package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simaogato/assetflow-backend/internal/usecase/seeder"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the demo holdings the owner does not have yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			ownerID, err := opts.ownerID()
			if err != nil {
				return err
			}

			created, err := seeder.NewDemoSeeder(a.HoldingRepo).Seed(cmd.Context(), ownerID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d holding(s) for %s\n", created, ownerID)
			return nil
		},
	}
}
