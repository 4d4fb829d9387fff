package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/simaogato/assetflow-backend/internal/format"
	"github.com/simaogato/assetflow-backend/internal/usecase/stocktake"
)

func newStockTakeCmd(opts *rootOptions) *cobra.Command {
	var (
		sets   []string
		years  int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "stocktake",
		Short: "Re-measure holdings and record the result in history",
		Long: `Open a stock-take over the owner's holdings, apply adjusted amounts and save.

Only holdings named with --set are written. Amounts may contain separators;
every non-digit is ignored.

Examples:
  assetctl stocktake --set <id>=1,200,000 --set <id>=850000
  assetctl stocktake --set <id>=1200000 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			ownerID, err := opts.ownerID()
			if err != nil {
				return err
			}

			session, err := a.StockTakeService.Begin(cmd.Context(), ownerID, years)
			if err != nil {
				return err
			}

			for _, set := range sets {
				id, raw, ok := strings.Cut(set, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q: expected <id>=<amount>", set)
				}
				holdingID, err := uuid.Parse(strings.TrimSpace(id))
				if err != nil {
					return fmt.Errorf("invalid --set %q: %w", set, err)
				}
				if _, err := session.SetAdjustedAmount(holdingID, raw); err != nil {
					return fmt.Errorf("holding %s: %w", holdingID, err)
				}
			}

			out := cmd.OutOrStdout()
			totals, err := session.ComputeTotals()
			if err != nil {
				return err
			}
			printLines(out, session.Lines())
			printTotals(out, totals)

			if dryRun {
				if err := a.StockTakeService.Cancel(ownerID, true); err != nil {
					return err
				}
				fmt.Fprintln(out, "dry run: nothing saved")
				return nil
			}

			result, err := a.StockTakeService.Save(cmd.Context(), ownerID)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "saved %d holding(s), weighted rate %s%%, history %s\n",
				len(result.Updated), result.WeightedRate.StringFixed(2), result.Record.ID)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "adjusted amount as <holding-id>=<amount> (repeatable)")
	cmd.Flags().IntVar(&years, "years", 0, "years to compound (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show totals without saving")
	return cmd
}

func printLines(out io.Writer, lines []stocktake.Line) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBEFORE\tAFTER\tDIFF\t%")
	for _, l := range lines {
		marker := ""
		if l.Touched() {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\t%s\t%s%%\n",
			l.Holding.ID, l.Holding.Name, marker, format.Yen(l.OriginalAmount), format.Yen(l.AdjustedAmount),
			format.FormatSigned(l.Difference), l.DifferencePercent.StringFixed(1))
	}
	w.Flush()
}

func printTotals(out io.Writer, t stocktake.Totals) {
	fmt.Fprintf(out, "total:        %s -> %s (%s)\n",
		format.Yen(t.OriginalTotal), format.Yen(t.AdjustedTotal), format.FormatSigned(t.TotalDifference))
	fmt.Fprintf(out, "future value: %s -> %s (%s)\n",
		format.Yen(t.OriginalFutureValue), format.Yen(t.AdjustedFutureValue), format.FormatSigned(t.FutureDifference))
}
