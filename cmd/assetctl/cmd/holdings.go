package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/format"
	"github.com/simaogato/assetflow-backend/internal/usecase/portfolio"
)

func newHoldingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holdings",
		Short: "List and edit holdings",
		Long: `List and edit the owner's cash and stock holdings.

Examples:
  assetctl holdings list
  assetctl holdings add --kind stock --name "S&P500" --amount 1500000 --rate 7
  assetctl holdings update <id> --amount 1600000
  assetctl holdings delete <id>`,
	}

	cmd.AddCommand(
		newHoldingsListCmd(opts),
		newHoldingsAddCmd(opts),
		newHoldingsUpdateCmd(opts),
		newHoldingsDeleteCmd(opts),
	)
	return cmd
}

func newHoldingsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List holdings grouped by kind",
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

			snapshot, err := a.PortfolioService.LoadHoldings(cmd.Context(), ownerID)
			if err != nil {
				return err
			}

			printSnapshot(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}
}

type holdingFlags struct {
	kind   string
	name   string
	amount string
	rate   string
	memo   string
}

func (f *holdingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", "", "cash or stock")
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount in yen")
	cmd.Flags().StringVar(&f.rate, "rate", "", "expected annual rate in percent (default depends on kind)")
	cmd.Flags().StringVar(&f.memo, "memo", "", "free-form note")
}

// apply overwrites input with every flag the user set
func (f *holdingFlags) apply(cmd *cobra.Command, input *portfolio.HoldingInput) error {
	changed := cmd.Flags().Changed
	if changed("kind") {
		input.Kind = domain.HoldingKind(f.kind)
	}
	if changed("name") {
		input.Name = f.name
	}
	if changed("amount") {
		amount, err := decimal.NewFromString(f.amount)
		if err != nil {
			return fmt.Errorf("invalid --amount: %w", err)
		}
		input.Amount = amount
	}
	if changed("rate") {
		rate, err := decimal.NewFromString(f.rate)
		if err != nil {
			return fmt.Errorf("invalid --rate: %w", err)
		}
		input.AnnualRatePercent = rate
	}
	if changed("memo") {
		memo := f.memo
		input.Memo = &memo
	}
	return nil
}

func newHoldingsAddCmd(opts *rootOptions) *cobra.Command {
	flags := &holdingFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a holding",
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

			input := portfolio.HoldingInput{}
			if err := flags.apply(cmd, &input); err != nil {
				return err
			}
			if !cmd.Flags().Changed("rate") {
				input.AnnualRatePercent = input.Kind.DefaultRatePercent()
			}

			holding, snapshot, err := a.PortfolioService.AddHolding(cmd.Context(), ownerID, input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", holding.ID, holding.Name)
			printSnapshot(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newHoldingsUpdateCmd(opts *rootOptions) *cobra.Command {
	flags := &holdingFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a holding; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			ownerID, err := opts.ownerID()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid holding id: %w", err)
			}

			snapshot, err := a.PortfolioService.LoadHoldings(cmd.Context(), ownerID)
			if err != nil {
				return err
			}
			current := snapshot.Find(id)
			if current == nil {
				return fmt.Errorf("holding %s: %w", id, domain.ErrNotFound)
			}

			input := portfolio.HoldingInput{
				Kind:              current.Kind,
				Name:              current.Name,
				Amount:            current.Amount,
				AnnualRatePercent: current.AnnualRatePercent,
				Memo:              current.Memo,
			}
			if err := flags.apply(cmd, &input); err != nil {
				return err
			}

			holding, snapshot, err := a.PortfolioService.UpdateHolding(cmd.Context(), ownerID, id, input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s\n", holding.ID, holding.Name)
			printSnapshot(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newHoldingsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a holding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			ownerID, err := opts.ownerID()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid holding id: %w", err)
			}

			snapshot, err := a.PortfolioService.DeleteHolding(cmd.Context(), ownerID, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			printSnapshot(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}
}

func printSnapshot(out io.Writer, snapshot *domain.AggregateSnapshot) {
	if snapshot.Empty() {
		fmt.Fprintln(out, "no holdings")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tID\tNAME\tAMOUNT\tRATE\tSHARE")
	for _, kind := range domain.Kinds {
		for _, h := range snapshot.ByKind[kind] {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\t%d%%\n",
				kind.DisplayName(), h.ID, h.Name, format.Yen(h.Amount), h.AnnualRatePercent.String(), snapshot.Share(h.Amount))
		}
	}
	w.Flush()

	for _, kind := range domain.Kinds {
		total := snapshot.TotalsByKind[kind]
		fmt.Fprintf(out, "%s: %s (%d%%)\n", kind.DisplayName(), format.Yen(total), snapshot.Share(total))
	}
	fmt.Fprintf(out, "total: %s\n", format.Yen(snapshot.GrandTotal))
}
