package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
	"github.com/simaogato/assetflow-backend/internal/usecase/projection"
)

// HoldingsLoader loads an owner's aggregate snapshot
type HoldingsLoader interface {
	LoadHoldings(ctx context.Context, ownerID uuid.UUID) (*domain.AggregateSnapshot, error)
}

// HistoryRecorder appends a projection to the owner's history
type HistoryRecorder interface {
	Append(ctx context.Context, ownerID uuid.UUID, input history.AppendInput) (*domain.HistoryRecord, error)
}

// SummaryResult is the main screen view: totals per kind and the default projection
type SummaryResult struct {
	Total      decimal.Decimal
	Cash       decimal.Decimal
	Stock      decimal.Decimal
	CashShare  int64
	StockShare int64
	Projection domain.ProjectionResult
}

// DashboardService composes the aggregator, the projection engine and history
type DashboardService struct {
	Loader       HoldingsLoader
	Recorder     HistoryRecorder
	DefaultRate  decimal.Decimal
	DefaultYears int
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(loader HoldingsLoader, recorder HistoryRecorder, defaultRate decimal.Decimal, defaultYears int) *DashboardService {
	return &DashboardService{
		Loader:       loader,
		Recorder:     recorder,
		DefaultRate:  defaultRate,
		DefaultYears: defaultYears,
	}
}

// GetSummary calculates the owner's totals and projects the grand total at the default rate and years
func (s *DashboardService) GetSummary(ctx context.Context, ownerID uuid.UUID) (*SummaryResult, error) {
	snapshot, err := s.Loader.LoadHoldings(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result, err := projection.Project(snapshot.GrandTotal, s.DefaultRate, s.DefaultYears)
	if err != nil {
		return nil, err
	}

	cash := snapshot.TotalsByKind[domain.HoldingKindCash]
	stock := snapshot.TotalsByKind[domain.HoldingKindStock]
	return &SummaryResult{
		Total:      snapshot.GrandTotal,
		Cash:       cash,
		Stock:      stock,
		CashShare:  snapshot.Share(cash),
		StockShare: snapshot.Share(stock),
		Projection: result,
	}, nil
}

// Project projects principal with the given rate and years; nil selects the default.
// Nothing is recorded.
func (s *DashboardService) Project(principal decimal.Decimal, rate *decimal.Decimal, years *int) (domain.ProjectionResult, error) {
	r, y, err := s.inputs(rate, years)
	if err != nil {
		return domain.ProjectionResult{}, err
	}
	return projection.Project(principal, r, y)
}

// Simulate projects the owner's grand total and records the result in history.
// Logic:
//  1. Resolve rate and years; nil selects the default
//  2. Load holdings and take the grand total as principal
//  3. Project and append the projection to history
//
// A rate or years out of bounds is a ValidationError and a ComputationError aborts;
// in both cases nothing is written.
func (s *DashboardService) Simulate(ctx context.Context, ownerID uuid.UUID, rate *decimal.Decimal, years *int) (*domain.HistoryRecord, error) {
	r, y, err := s.inputs(rate, years)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.Loader.LoadHoldings(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result, err := projection.Project(snapshot.GrandTotal, r, y)
	if err != nil {
		return nil, err
	}

	return s.Recorder.Append(ctx, ownerID, history.AppendInput{
		CurrentAssets:     result.Principal,
		AnnualRatePercent: result.AnnualRatePercent,
		Years:             result.Years,
		FutureValue:       result.FutureValue,
	})
}

// inputs applies the defaults and checks the bounds of caller-supplied projection inputs
func (s *DashboardService) inputs(rate *decimal.Decimal, years *int) (decimal.Decimal, int, error) {
	r := s.DefaultRate
	if rate != nil {
		r = *rate
	}
	y := s.DefaultYears
	if years != nil {
		y = *years
	}
	if err := domain.ValidateRate(r); err != nil {
		return r, y, err
	}
	if err := domain.ValidateYears(y); err != nil {
		return r, y, err
	}
	return r, y, nil
}
