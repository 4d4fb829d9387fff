package projection

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Project applies the fixed annual compound-interest formula:
//
//	future_value    = round(principal * (1 + rate/100) ^ years)
//	increase_amount = future_value - principal
//
// The increase is derived from the rounded future value so the displayed total and
// delta never drift apart. Rounding is half-up (away from zero for positive values).
//
// A negative principal, a rate outside [0, MaxRatePercent], years outside
// [0, MaxYears] or a negative result is a ComputationError.
func Project(principal, annualRatePercent decimal.Decimal, years int) (domain.ProjectionResult, error) {
	if principal.IsNegative() {
		return domain.ProjectionResult{}, &domain.ComputationError{Reason: "principal must not be negative"}
	}
	if annualRatePercent.IsNegative() || annualRatePercent.GreaterThan(domain.MaxRatePercent) {
		return domain.ProjectionResult{}, &domain.ComputationError{Reason: "annual rate must be between 0 and 100"}
	}
	if years < 0 {
		return domain.ProjectionResult{}, &domain.ComputationError{Reason: "years must not be negative"}
	}
	if years > domain.MaxYears {
		return domain.ProjectionResult{}, &domain.ComputationError{
			Reason: fmt.Sprintf("years must not exceed %d", domain.MaxYears),
		}
	}

	growth := decimal.NewFromInt(1).Add(annualRatePercent.Div(hundred))
	futureValue := principal.Mul(growth.Pow(decimal.NewFromInt(int64(years)))).Round(0)
	if futureValue.IsNegative() {
		return domain.ProjectionResult{}, &domain.ComputationError{
			Reason: fmt.Sprintf("future value %s is negative", futureValue),
		}
	}

	return domain.ProjectionResult{
		Principal:         principal,
		AnnualRatePercent: annualRatePercent,
		Years:             years,
		FutureValue:       futureValue,
		IncreaseAmount:    futureValue.Sub(principal),
	}, nil
}

// FromFloat converts a caller-supplied float to a decimal.
// NaN and infinite values are rejected before they can reach the formula.
func FromFloat(v float64, field string) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, &domain.ComputationError{Reason: field + " is not a finite number"}
	}
	return decimal.NewFromFloat(v), nil
}

// ProjectFloat is Project for float inputs coming from a presentation layer
func ProjectFloat(principal, annualRatePercent float64, years int) (domain.ProjectionResult, error) {
	p, err := FromFloat(principal, "principal")
	if err != nil {
		return domain.ProjectionResult{}, err
	}
	r, err := FromFloat(annualRatePercent, "annual rate")
	if err != nil {
		return domain.ProjectionResult{}, err
	}
	return Project(p, r, years)
}

// SumFutureValues projects every amount at its own rate and sums the rounded results.
// Holdings compound independently, so this is not equal to projecting the summed
// principal at a blended rate.
func SumFutureValues(amounts, ratesPercent []decimal.Decimal, years int) (decimal.Decimal, error) {
	if len(amounts) != len(ratesPercent) {
		return decimal.Zero, &domain.ComputationError{Reason: "amounts and rates length mismatch"}
	}

	total := decimal.Zero
	for i := range amounts {
		result, err := Project(amounts[i], ratesPercent[i], years)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(result.FutureValue)
	}
	return total, nil
}

// WeightedRate returns sum(rate_i * amount_i) / sum(amount_i).
// ok is false when the amounts sum to zero and the rate is undefined.
func WeightedRate(amounts, ratesPercent []decimal.Decimal) (rate decimal.Decimal, ok bool) {
	weighted := decimal.Zero
	total := decimal.Zero
	for i := range amounts {
		weighted = weighted.Add(ratesPercent[i].Mul(amounts[i]))
		total = total.Add(amounts[i])
	}
	if total.IsZero() {
		return decimal.Zero, false
	}
	return weighted.Div(total), true
}
