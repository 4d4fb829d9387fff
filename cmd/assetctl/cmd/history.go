package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/format"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query recorded projections and stock-takes",
		Long: `Query and export history records.

Subcommands:
  list    - List records grouped by month
  show    - Show one record with its stock-take details
  delete  - Delete a record and its details
  export  - Write every record as CSV

Examples:
  assetctl history list
  assetctl history show <id>
  assetctl history export --out history.csv`,
	}

	cmd.AddCommand(
		newHistoryListCmd(opts),
		newHistoryShowCmd(opts),
		newHistoryDeleteCmd(opts),
		newHistoryExportCmd(opts),
	)
	return cmd
}

func newHistoryListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List records grouped by month",
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

			records, err := a.HistoryService.List(cmd.Context(), ownerID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "no history")
				return nil
			}

			for _, group := range history.GroupByMonth(records, time.Now()) {
				fmt.Fprintf(out, "%s\n", group.Label)
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, r := range group.Records {
					fmt.Fprintf(w, "  %s\t%s\t%s\t%s%%\t%dy\t%s\n",
						r.ID, r.CreatedAt.Local().Format("01/02 15:04"), format.Yen(r.CurrentAssets),
						r.AnnualRatePercent.StringFixed(2), r.Years, format.Yen(r.FutureValue))
				}
				w.Flush()
			}
			return nil
		},
	}
}

func newHistoryShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a record with its details",
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
				return fmt.Errorf("invalid history id: %w", err)
			}

			record, err := a.HistoryService.Get(cmd.Context(), ownerID, id)
			if err != nil {
				return err
			}

			printRecord(cmd.OutOrStdout(), record)
			return nil
		},
	}
}

func newHistoryDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
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
				return fmt.Errorf("invalid history id: %w", err)
			}

			if err := a.HistoryService.Remove(cmd.Context(), ownerID, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

// historyRow is one exported CSV line
type historyRow struct {
	ID                string `csv:"id"`
	CreatedAt         string `csv:"created_at"`
	Month             string `csv:"month"`
	CurrentAssets     string `csv:"current_assets"`
	AnnualRatePercent string `csv:"annual_rate_percent"`
	Years             int    `csv:"years"`
	FutureValue       string `csv:"future_value"`
	IncreaseAmount    string `csv:"increase_amount"`
}

func historyRows(records []*domain.HistoryRecord) []*historyRow {
	rows := make([]*historyRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, &historyRow{
			ID:                r.ID.String(),
			CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
			Month:             r.CreatedAt.Local().Format("2006-01"),
			CurrentAssets:     r.CurrentAssets.String(),
			AnnualRatePercent: r.AnnualRatePercent.StringFixed(2),
			Years:             r.Years,
			FutureValue:       r.FutureValue.String(),
			IncreaseAmount:    r.IncreaseAmount.String(),
		})
	}
	return rows
}

func newHistoryExportCmd(opts *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history as CSV",
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

			records, err := a.HistoryService.List(cmd.Context(), ownerID)
			if err != nil {
				return err
			}
			rows := historyRows(records)

			if outPath == "" || outPath == "-" {
				return gocsv.Marshal(&rows, cmd.OutOrStdout())
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			defer f.Close()

			if err := gocsv.MarshalFile(&rows, f); err != nil {
				return fmt.Errorf("failed to write csv: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d record(s) to %s\n", len(rows), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func printRecord(out io.Writer, r *domain.HistoryRecord) {
	fmt.Fprintf(out, "id:           %s\n", r.ID)
	fmt.Fprintf(out, "recorded:     %s\n", r.CreatedAt.Local().Format("2006/01/02 15:04"))
	fmt.Fprintf(out, "assets:       %s\n", format.Yen(r.CurrentAssets))
	fmt.Fprintf(out, "rate:         %s%%\n", r.AnnualRatePercent.StringFixed(2))
	fmt.Fprintf(out, "years:        %d\n", r.Years)
	fmt.Fprintf(out, "future value: %s\n", format.Yen(r.FutureValue))
	fmt.Fprintf(out, "increase:     %s\n", format.FormatSigned(r.IncreaseAmount))

	if len(r.Details) == 0 {
		return
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tBEFORE\tAFTER\tDIFF\tRATE\tFUTURE")
	for _, d := range r.Details {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s%%\t%s\n",
			d.AssetName, d.AssetKind.DisplayName(), format.Yen(d.OriginalAmount), format.Yen(d.AdjustedAmount),
			format.FormatSigned(d.AdjustedAmount.Sub(d.OriginalAmount)), d.AnnualRatePercent.String(), format.Yen(d.FutureValue))
	}
	w.Flush()
}
