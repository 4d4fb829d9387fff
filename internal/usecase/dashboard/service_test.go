package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHoldingsLoader is a mock implementation of HoldingsLoader for testing
type MockHoldingsLoader struct {
	mock.Mock
}

func (m *MockHoldingsLoader) LoadHoldings(ctx context.Context, ownerID uuid.UUID) (*domain.AggregateSnapshot, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregateSnapshot), args.Error(1)
}

// MockHistoryRecorder is a mock implementation of HistoryRecorder for testing
type MockHistoryRecorder struct {
	mock.Mock
}

func (m *MockHistoryRecorder) Append(ctx context.Context, ownerID uuid.UUID, input history.AppendInput) (*domain.HistoryRecord, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryRecord), args.Error(1)
}

func snapshot(cash, stock int64) *domain.AggregateSnapshot {
	return &domain.AggregateSnapshot{
		TotalsByKind: map[domain.HoldingKind]decimal.Decimal{
			domain.HoldingKindCash:  decimal.NewFromInt(cash),
			domain.HoldingKindStock: decimal.NewFromInt(stock),
		},
		GrandTotal: decimal.NewFromInt(cash + stock),
	}
}

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	loader := new(MockHoldingsLoader)
	service := NewDashboardService(loader, new(MockHistoryRecorder), decimal.NewFromInt(5), 10)

	ownerID := uuid.New()
	loader.On("LoadHoldings", ctx, ownerID).Return(snapshot(250_000, 750_000), nil)

	summary, err := service.GetSummary(ctx, ownerID)

	require.NoError(t, err)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(1_000_000)))
	assert.Equal(t, int64(25), summary.CashShare)
	assert.Equal(t, int64(75), summary.StockShare)
	assert.True(t, summary.Projection.FutureValue.Equal(decimal.NewFromInt(1_628_895)))
	assert.True(t, summary.Projection.IncreaseAmount.Equal(decimal.NewFromInt(628_895)))
}

func TestSimulate_UsesDefaultsAndRecordsHistory(t *testing.T) {
	ctx := context.Background()
	loader := new(MockHoldingsLoader)
	recorder := new(MockHistoryRecorder)
	service := NewDashboardService(loader, recorder, decimal.NewFromInt(5), 10)

	ownerID := uuid.New()
	record := &domain.HistoryRecord{ID: uuid.New()}
	loader.On("LoadHoldings", ctx, ownerID).Return(snapshot(1_000_000, 0), nil)
	recorder.On("Append", ctx, ownerID, mock.MatchedBy(func(in history.AppendInput) bool {
		return in.CurrentAssets.Equal(decimal.NewFromInt(1_000_000)) &&
			in.FutureValue.Equal(decimal.NewFromInt(1_628_895)) &&
			in.AnnualRatePercent.Equal(decimal.NewFromInt(5)) &&
			in.Years == 10 &&
			len(in.Details) == 0
	})).Return(record, nil)

	got, err := service.Simulate(ctx, ownerID, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, record, got)
	recorder.AssertExpectations(t)
}

func TestSimulate_CustomRateAndYears(t *testing.T) {
	ctx := context.Background()
	loader := new(MockHoldingsLoader)
	recorder := new(MockHistoryRecorder)
	service := NewDashboardService(loader, recorder, decimal.NewFromInt(5), 10)

	ownerID := uuid.New()
	rate := decimal.Zero
	years := 30
	loader.On("LoadHoldings", ctx, ownerID).Return(snapshot(0, 500), nil)
	recorder.On("Append", ctx, ownerID, mock.MatchedBy(func(in history.AppendInput) bool {
		return in.FutureValue.Equal(decimal.NewFromInt(500)) && in.Years == 30
	})).Return(&domain.HistoryRecord{}, nil)

	_, err := service.Simulate(ctx, ownerID, &rate, &years)

	require.NoError(t, err)
	recorder.AssertExpectations(t)
}

func TestSimulate_NegativeYearsWritesNothing(t *testing.T) {
	ctx := context.Background()
	loader := new(MockHoldingsLoader)
	recorder := new(MockHistoryRecorder)
	service := NewDashboardService(loader, recorder, decimal.NewFromInt(5), 10)

	ownerID := uuid.New()
	years := -1
	loader.On("LoadHoldings", ctx, ownerID).Return(snapshot(100, 0), nil)

	_, err := service.Simulate(ctx, ownerID, nil, &years)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	recorder.AssertNotCalled(t, "Append")
}

func TestSimulate_OutOfBoundsInputsWriteNothing(t *testing.T) {
	negativeRate := decimal.NewFromInt(-50)
	highRate := decimal.NewFromInt(101)
	tooManyYears := domain.MaxYears + 1

	tests := []struct {
		name  string
		rate  *decimal.Decimal
		years *int
	}{
		{"negative rate", &negativeRate, nil},
		{"rate above 100", &highRate, nil},
		{"years above maximum", nil, &tooManyYears},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := new(MockHoldingsLoader)
			recorder := new(MockHistoryRecorder)
			service := NewDashboardService(loader, recorder, decimal.NewFromInt(5), 10)

			_, err := service.Simulate(context.Background(), uuid.New(), tt.rate, tt.years)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			loader.AssertNotCalled(t, "LoadHoldings")
			recorder.AssertNotCalled(t, "Append")
		})
	}
}

func TestProject_UsesDefaultsAndBounds(t *testing.T) {
	service := NewDashboardService(nil, nil, decimal.NewFromInt(5), 10)

	result, err := service.Project(decimal.NewFromInt(1_000_000), nil, nil)
	require.NoError(t, err)
	assert.True(t, result.FutureValue.Equal(decimal.NewFromInt(1_628_895)))

	rate := decimal.NewFromInt(-50)
	years := 2
	_, err = service.Project(decimal.NewFromInt(1_000_000), &rate, &years)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSimulate_LoadFailure(t *testing.T) {
	ctx := context.Background()
	loader := new(MockHoldingsLoader)
	recorder := new(MockHistoryRecorder)
	service := NewDashboardService(loader, recorder, decimal.NewFromInt(5), 10)

	ownerID := uuid.New()
	fetchErr := &domain.FetchError{Op: "holdings", Err: errors.New("timeout")}
	loader.On("LoadHoldings", ctx, ownerID).Return(nil, fetchErr)

	_, err := service.Simulate(ctx, ownerID, nil, nil)

	assert.ErrorIs(t, err, fetchErr)
	recorder.AssertNotCalled(t, "Append")
}
