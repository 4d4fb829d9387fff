package cmd

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/format"
	"github.com/simaogato/assetflow-backend/internal/usecase/dashboard"
)

type projectionFlags struct {
	rate  string
	years int
}

func (f *projectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rate, "rate", "", "annual rate in percent (default from config)")
	cmd.Flags().IntVar(&f.years, "years", 0, "years to compound (default from config)")
}

// values returns the rate and years the user set, nil for unset flags
func (f *projectionFlags) values(cmd *cobra.Command) (*decimal.Decimal, *int, error) {
	var (
		rate  *decimal.Decimal
		years *int
	)
	if cmd.Flags().Changed("rate") {
		r, err := decimal.NewFromString(f.rate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --rate: %w", err)
		}
		rate = &r
	}
	if cmd.Flags().Changed("years") {
		y := f.years
		years = &y
	}
	return rate, years, nil
}

func newProjectCmd(opts *rootOptions) *cobra.Command {
	flags := &projectionFlags{}
	cmd := &cobra.Command{
		Use:   "project <principal>",
		Short: "Project a principal with annual compounding; nothing is recorded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid principal: %w", err)
			}
			rate, years, err := flags.values(cmd)
			if err != nil {
				return err
			}

			defaults := dashboard.NewDashboardService(nil, nil, opts.cfg.Projection.DefaultRate(), opts.cfg.Projection.DefaultYears)
			result, err := defaults.Project(principal, rate, years)
			if err != nil {
				return err
			}

			printProjection(cmd.OutOrStdout(), result)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	flags := &projectionFlags{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project the owner's total assets and record the result in history",
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
			rate, years, err := flags.values(cmd)
			if err != nil {
				return err
			}

			record, err := a.DashboardService.Simulate(cmd.Context(), ownerID, rate, years)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s\n", record.ID)
			printProjection(cmd.OutOrStdout(), domain.ProjectionResult{
				Principal:         record.CurrentAssets,
				AnnualRatePercent: record.AnnualRatePercent,
				Years:             record.Years,
				FutureValue:       record.FutureValue,
				IncreaseAmount:    record.IncreaseAmount,
			})
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printProjection(out io.Writer, r domain.ProjectionResult) {
	fmt.Fprintf(out, "principal:    %s\n", format.Yen(r.Principal))
	fmt.Fprintf(out, "rate:         %s%%\n", r.AnnualRatePercent.String())
	fmt.Fprintf(out, "years:        %d\n", r.Years)
	fmt.Fprintf(out, "future value: %s\n", format.Yen(r.FutureValue))
	fmt.Fprintf(out, "increase:     %s\n", format.FormatSigned(r.IncreaseAmount))
}
