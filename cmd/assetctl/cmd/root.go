package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simaogato/assetflow-backend/internal/app"
	"github.com/simaogato/assetflow-backend/internal/config"
	"github.com/simaogato/assetflow-backend/internal/logger"
)

// DefaultOwner is the owner used when neither --owner nor ASSETFLOW_OWNER is set
const DefaultOwner = "00000000-0000-0000-0000-000000000001"

type rootOptions struct {
	configPath string
	dbPath     string
	owner      string
	verbose    bool

	cfg *config.Config
	log *zap.SugaredLogger
	app *app.App
}

// NewRootCmd builds the assetctl command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "assetctl",
		Short: "Manage holdings, projections and stock-takes from the terminal",
		Long: `assetctl works directly against the configured database.

It provides tools for:
  - Listing and editing cash and stock holdings
  - Projecting future values with annual compounding
  - Recording simulations and stock-takes in history
  - Exporting history as CSV`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
	}

	owner := os.Getenv("ASSETFLOW_OWNER")
	if owner == "" {
		owner = DefaultOwner
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", os.Getenv("ASSETFLOW_CONFIG"), "path to a YAML or JSON config file")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides the configured driver)")
	flags.StringVar(&opts.owner, "owner", owner, "owner id")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(
		newHoldingsCmd(opts),
		newProjectCmd(opts),
		newSimulateCmd(opts),
		newHistoryCmd(opts),
		newStockTakeCmd(opts),
		newSeedCmd(opts),
		newTokenCmd(opts),
	)

	return rootCmd
}

// Execute runs the root command with os.Args
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.dbPath != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.SQLitePath = o.dbPath
	}
	o.cfg = cfg

	if o.verbose {
		o.log = logger.New(cfg.Env)
	} else {
		o.log = logger.Nop()
	}
	return nil
}

// open connects to the database on first use
func (o *rootOptions) open(cmd *cobra.Command) (*app.App, error) {
	if o.app != nil {
		return o.app, nil
	}
	a, err := app.New(cmd.Context(), o.cfg, o.log)
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}

func (o *rootOptions) close() error {
	if o.app == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	return err
}

func (o *rootOptions) ownerID() (uuid.UUID, error) {
	id, err := uuid.Parse(o.owner)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --owner: %w", err)
	}
	return id, nil
}
