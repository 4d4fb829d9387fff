package projection

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestProject_DefaultMainScreenScenario(t *testing.T) {
	result, err := Project(d(1_000_000), d(5), 10)

	require.NoError(t, err)
	assert.True(t, result.FutureValue.Equal(d(1_628_895)), "got %s", result.FutureValue)
	assert.True(t, result.IncreaseAmount.Equal(d(628_895)), "got %s", result.IncreaseAmount)
	assert.Equal(t, 10, result.Years)
}

func TestProject_ZeroPrincipal(t *testing.T) {
	result, err := Project(decimal.Zero, d(7), 30)

	require.NoError(t, err)
	assert.True(t, result.FutureValue.IsZero())
	assert.True(t, result.IncreaseAmount.IsZero())
}

func TestProject_ZeroYearsKeepsPrincipal(t *testing.T) {
	result, err := Project(d(123_456), d(5), 0)

	require.NoError(t, err)
	assert.True(t, result.FutureValue.Equal(d(123_456)))
	assert.True(t, result.IncreaseAmount.IsZero())
}

func TestProject_RoundsHalfUp(t *testing.T) {
	// 10 * 1.05 = 10.5 -> 11
	result, err := Project(d(10), d(5), 1)

	require.NoError(t, err)
	assert.True(t, result.FutureValue.Equal(d(11)), "got %s", result.FutureValue)
	assert.True(t, result.IncreaseAmount.Equal(d(1)))
}

func TestProject_IncreaseDerivedFromRoundedValue(t *testing.T) {
	principals := []int64{1, 99, 1_000, 12_345, 1_000_000, 999_999_999_999}
	rates := []string{"0", "0.001", "0.1", "2.5", "5", "7", "100"}
	yearsList := []int{0, 1, 10, 30}

	for _, p := range principals {
		for _, r := range rates {
			for _, y := range yearsList {
				result, err := Project(d(p), decimal.RequireFromString(r), y)
				require.NoError(t, err)

				assert.True(t, result.IncreaseAmount.Equal(result.FutureValue.Sub(d(p))),
					"increase drift for p=%d r=%s y=%d", p, r, y)
				assert.True(t, result.FutureValue.GreaterThanOrEqual(d(p)),
					"future value below principal for p=%d r=%s y=%d", p, r, y)
				assert.True(t, result.FutureValue.Equal(result.FutureValue.Round(0)))
			}
		}
	}
}

func TestProject_RejectsInvalidInputs(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		years     int
	}{
		{"negative principal", d(-1), d(5), 10},
		{"negative years", d(100), d(5), -1},
		{"negative rate", d(1_000_000), d(-50), 2},
		{"rate above 100", d(100), d(101), 1},
		{"years above maximum", d(1_000_000), d(5), domain.MaxYears + 1},
		{"huge years", d(1_000_000), d(5), 2_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project(tt.principal, tt.rate, tt.years)

			var ce *domain.ComputationError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestProject_AcceptsBounds(t *testing.T) {
	result, err := Project(d(1), domain.MaxRatePercent, domain.MaxYears)

	require.NoError(t, err)
	assert.Equal(t, domain.MaxYears, result.Years)
	assert.True(t, result.IncreaseAmount.IsPositive())
}

func TestProjectFloat_RejectsNonFinite(t *testing.T) {
	inputs := []struct {
		principal float64
		rate      float64
	}{
		{math.NaN(), 5},
		{math.Inf(1), 5},
		{1000, math.NaN()},
		{1000, math.Inf(-1)},
	}

	for _, in := range inputs {
		_, err := ProjectFloat(in.principal, in.rate, 10)

		var ce *domain.ComputationError
		assert.ErrorAs(t, err, &ce)
	}
}

func TestProjectFloat_MatchesDecimal(t *testing.T) {
	result, err := ProjectFloat(1_000_000, 5, 10)

	require.NoError(t, err)
	assert.True(t, result.FutureValue.Equal(d(1_628_895)))
}

func TestSumFutureValues_PerHoldingDiffersFromBlended(t *testing.T) {
	amounts := []decimal.Decimal{d(1_000_000), d(2_000_000)}
	rates := []decimal.Decimal{decimal.RequireFromString("0.1"), d(7)}

	cash, err := Project(amounts[0], rates[0], 10)
	require.NoError(t, err)
	stock, err := Project(amounts[1], rates[1], 10)
	require.NoError(t, err)
	assert.True(t, cash.FutureValue.Equal(d(1_010_045)), "got %s", cash.FutureValue)
	assert.True(t, stock.FutureValue.Equal(d(3_934_303)), "got %s", stock.FutureValue)

	summed, err := SumFutureValues(amounts, rates, 10)
	require.NoError(t, err)
	assert.True(t, summed.Equal(d(4_944_348)), "got %s", summed)

	blendedRate, ok := WeightedRate(amounts, rates)
	require.True(t, ok)
	assert.True(t, blendedRate.Equal(decimal.RequireFromString("4.7")), "got %s", blendedRate)

	blended, err := Project(d(3_000_000), blendedRate, 10)
	require.NoError(t, err)
	assert.False(t, blended.FutureValue.Equal(summed))
}

func TestSumFutureValues_LengthMismatch(t *testing.T) {
	_, err := SumFutureValues([]decimal.Decimal{d(1)}, nil, 10)

	var ce *domain.ComputationError
	assert.ErrorAs(t, err, &ce)
}

func TestWeightedRate_ZeroTotalIsUndefined(t *testing.T) {
	rate, ok := WeightedRate([]decimal.Decimal{decimal.Zero}, []decimal.Decimal{d(5)})

	assert.False(t, ok)
	assert.True(t, rate.IsZero())
}
