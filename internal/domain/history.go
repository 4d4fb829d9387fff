package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectionResult is the outcome of one compound-interest projection.
// It is immutable once computed and becomes a HistoryRecord when persisted.
type ProjectionResult struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	Years             int
	FutureValue       decimal.Decimal // rounded to a whole unit
	IncreaseAmount    decimal.Decimal // FutureValue - Principal
}

// HistoryRecord is an append-only snapshot of a projection or stock-take.
// Records are inserted or deleted, never updated.
type HistoryRecord struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	CurrentAssets     decimal.Decimal
	AnnualRatePercent decimal.Decimal
	Years             int
	FutureValue       decimal.Decimal
	IncreaseAmount    decimal.Decimal
	CreatedAt         time.Time
	Details           []HistoryDetail // populated only when loaded by ID
}

// HistoryDetail captures one holding touched during a stock-take.
// Rows are owned by their HistoryRecord and cascade-deleted with it.
type HistoryDetail struct {
	HistoryID         uuid.UUID
	AssetID           uuid.UUID
	AssetName         string
	AssetKind         HoldingKind
	OriginalAmount    decimal.Decimal
	AdjustedAmount    decimal.Decimal
	AnnualRatePercent decimal.Decimal
	FutureValue       decimal.Decimal
	IncreaseAmount    decimal.Decimal
}

// HistoryGroup is one calendar-month bucket of history records
type HistoryGroup struct {
	Label   string
	Records []*HistoryRecord
}
