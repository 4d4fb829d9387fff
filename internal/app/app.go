// Package app wires repositories and usecases from configuration.
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/simaogato/assetflow-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/assetflow-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/assetflow-backend/internal/auth"
	"github.com/simaogato/assetflow-backend/internal/config"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/usecase/dashboard"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
	"github.com/simaogato/assetflow-backend/internal/usecase/portfolio"
	"github.com/simaogato/assetflow-backend/internal/usecase/stocktake"
)

// App holds the wired services shared by the server and the CLI
type App struct {
	Config   *config.Config
	Logger   *zap.SugaredLogger
	Verifier *auth.Verifier

	HoldingRepo domain.HoldingRepository
	HistoryRepo domain.HistoryRepository

	PortfolioService *portfolio.PortfolioService
	DashboardService *dashboard.DashboardService
	HistoryService   *history.HistoryService
	StockTakeService *stocktake.StockTakeService

	closer io.Closer
}

// New opens the configured database, applies the schema and builds every service.
// Logic:
//  1. Open the repository adapter selected by database.driver
//  2. Build repositories
//  3. Build services (use cases) on top of them
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   log,
		Verifier: auth.NewVerifier(cfg.Auth.JWTSecret),
	}

	// 1. Setup Database
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(cfg.Database.PostgresConnString())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.closer = db
		// 2. Initialize Repositories (Postgres)
		a.HoldingRepo = postgres.NewHoldingRepository(db)
		a.HistoryRepo = postgres.NewHistoryRepository(db)
	case "sqlite":
		db, err := sqlite.NewDB(cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.closer = db
		// 2. Initialize Repositories (SQLite)
		a.HoldingRepo = sqlite.NewHoldingRepository(db)
		a.HistoryRepo = sqlite.NewHistoryRepository(db)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	// 3. Initialize Services (Use Cases)
	a.PortfolioService = portfolio.NewPortfolioService(a.HoldingRepo)
	a.HistoryService = history.NewHistoryService(a.HistoryRepo, log)
	a.DashboardService = dashboard.NewDashboardService(
		a.PortfolioService,
		a.HistoryService,
		cfg.Projection.DefaultRate(),
		cfg.Projection.DefaultYears,
	)
	a.StockTakeService = stocktake.NewStockTakeService(
		a.PortfolioService,
		a.HoldingRepo,
		a.HistoryService,
		log,
		cfg.Projection.DefaultYears,
	)

	log.Infow("services initialized",
		"driver", cfg.Database.Driver,
		"default_rate_percent", cfg.Projection.DefaultRatePercent,
		"default_years", cfg.Projection.DefaultYears,
	)
	return a, nil
}

// Close releases the database connection
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
