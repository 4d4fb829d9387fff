//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// openTestDB connects using DB_CONN_STR, e.g.
// "host=localhost port=5432 user=postgres password=postgres dbname=assetflow_test sslmode=disable"
func openTestDB(t *testing.T) *DB {
	t.Helper()
	connStr := os.Getenv("DB_CONN_STR")
	if connStr == "" {
		t.Skip("DB_CONN_STR not set")
	}

	db, err := NewDB(connStr)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHoldingRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := NewHoldingRepository(openTestDB(t))

	ownerID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)
	memo := "NISA"
	h := &domain.Holding{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Kind:              domain.HoldingKindStock,
		Name:              "Index fund",
		Amount:            decimal.NewFromInt(2_000_000),
		AnnualRatePercent: decimal.NewFromInt(7),
		Memo:              &memo,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, repo.Create(ctx, h))
	t.Cleanup(func() { _ = repo.Delete(ctx, ownerID, h.ID) })

	got, err := repo.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	if diff := cmp.Diff([]*domain.Holding{h}, got, decimalComparer); diff != "" {
		t.Errorf("ListByOwner() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, repo.UpdateAmount(ctx, ownerID, h.ID, decimal.NewFromInt(2_100_000), now.Add(time.Second)))
	assert.ErrorIs(t, repo.UpdateAmount(ctx, uuid.New(), h.ID, decimal.NewFromInt(1), now), domain.ErrNotFound)

	got, err = repo.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(2_100_000)))
}

func TestHistoryRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(openTestDB(t))

	ownerID := uuid.New()
	record := &domain.HistoryRecord{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		CurrentAssets:     decimal.NewFromInt(1_000_000),
		AnnualRatePercent: decimal.NewFromInt(5),
		Years:             10,
		FutureValue:       decimal.NewFromInt(1_628_895),
		IncreaseAmount:    decimal.NewFromInt(628_895),
		CreatedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, record))
	require.NoError(t, repo.CreateDetails(ctx, []domain.HistoryDetail{{
		HistoryID:         record.ID,
		AssetID:           uuid.New(),
		AssetName:         "Bank",
		AssetKind:         domain.HoldingKindCash,
		OriginalAmount:    decimal.NewFromInt(900_000),
		AdjustedAmount:    decimal.NewFromInt(1_000_000),
		AnnualRatePercent: decimal.RequireFromString("0.1"),
		FutureValue:       decimal.NewFromInt(1_010_045),
		IncreaseAmount:    decimal.NewFromInt(10_045),
	}}))

	got, err := repo.GetByID(ctx, ownerID, record.ID)
	require.NoError(t, err)
	assert.Len(t, got.Details, 1)
	assert.True(t, got.CreatedAt.Equal(record.CreatedAt))

	require.NoError(t, repo.Delete(ctx, ownerID, record.ID))
	_, err = repo.GetByID(ctx, ownerID, record.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
