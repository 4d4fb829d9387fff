package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/logger"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func newHolding(ownerID uuid.UUID, name string, amount int64, updatedAt time.Time) *domain.Holding {
	return &domain.Holding{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Kind:              domain.HoldingKindStock,
		Name:              name,
		Amount:            decimal.NewFromInt(amount),
		AnnualRatePercent: decimal.RequireFromString("4.5"),
		CreatedAt:         updatedAt,
		UpdatedAt:         updatedAt,
	}
}

func TestHoldingRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewHoldingRepository(newTestDB(t))

	ownerID := uuid.New()
	base := time.Date(2026, 10, 1, 9, 30, 0, 123456789, time.UTC)
	older := newHolding(ownerID, "Older", 100, base)
	newer := newHolding(ownerID, "Newer", 200, base.Add(time.Hour))
	newer.Kind = domain.HoldingKindCash
	newer.Memo = strPtr("普通預金")
	other := newHolding(uuid.New(), "Someone else", 300, base)

	for _, h := range []*domain.Holding{older, newer, other} {
		require.NoError(t, repo.Create(ctx, h))
	}

	got, err := repo.ListByOwner(ctx, ownerID)

	require.NoError(t, err)
	want := []*domain.Holding{newer, older}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("ListByOwner() mismatch (-want +got):\n%s", diff)
	}
}

func TestHoldingRepository_ListEmpty(t *testing.T) {
	repo := NewHoldingRepository(newTestDB(t))

	got, err := repo.ListByOwner(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHoldingRepository_UpdateAndUpdateAmount(t *testing.T) {
	ctx := context.Background()
	repo := NewHoldingRepository(newTestDB(t))

	ownerID := uuid.New()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	h := newHolding(ownerID, "Fund", 1_000, base)
	require.NoError(t, repo.Create(ctx, h))

	h.Name = "Renamed"
	h.Memo = strPtr("memo")
	h.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, h))

	later := base.Add(time.Hour)
	require.NoError(t, repo.UpdateAmount(ctx, ownerID, h.ID, decimal.NewFromInt(2_500), later))

	got, err := repo.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Renamed", got[0].Name)
	assert.Equal(t, "memo", *got[0].Memo)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(2_500)))
	assert.True(t, got[0].UpdatedAt.Equal(later))
	assert.True(t, got[0].CreatedAt.Equal(base))
}

func TestHoldingRepository_OwnerScopedWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewHoldingRepository(newTestDB(t))

	h := newHolding(uuid.New(), "Fund", 1_000, time.Now())
	require.NoError(t, repo.Create(ctx, h))
	stranger := uuid.New()

	err := repo.UpdateAmount(ctx, stranger, h.ID, decimal.NewFromInt(1), time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	moved := *h
	moved.OwnerID = stranger
	assert.ErrorIs(t, repo.Update(ctx, &moved), domain.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, stranger, h.ID), domain.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, h.OwnerID, h.ID))
	assert.ErrorIs(t, repo.Delete(ctx, h.OwnerID, h.ID), domain.ErrNotFound)
}

func TestHistoryRepository_RoundTripWithDetails(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(newTestDB(t))

	ownerID := uuid.New()
	record := &domain.HistoryRecord{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		CurrentAssets:     decimal.NewFromInt(3_000_000),
		AnnualRatePercent: decimal.RequireFromString("4.7"),
		Years:             10,
		FutureValue:       decimal.NewFromInt(4_944_348),
		IncreaseAmount:    decimal.NewFromInt(1_944_348),
		CreatedAt:         time.Date(2026, 10, 18, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, record))

	details := []domain.HistoryDetail{
		{
			HistoryID:         record.ID,
			AssetID:           uuid.New(),
			AssetName:         "Bank",
			AssetKind:         domain.HoldingKindCash,
			OriginalAmount:    decimal.NewFromInt(900_000),
			AdjustedAmount:    decimal.NewFromInt(1_000_000),
			AnnualRatePercent: decimal.RequireFromString("0.1"),
			FutureValue:       decimal.NewFromInt(1_010_045),
			IncreaseAmount:    decimal.NewFromInt(10_045),
		},
		{
			HistoryID:         record.ID,
			AssetID:           uuid.New(),
			AssetName:         "Index fund",
			AssetKind:         domain.HoldingKindStock,
			OriginalAmount:    decimal.NewFromInt(2_100_000),
			AdjustedAmount:    decimal.NewFromInt(2_000_000),
			AnnualRatePercent: decimal.NewFromInt(7),
			FutureValue:       decimal.NewFromInt(3_934_303),
			IncreaseAmount:    decimal.NewFromInt(1_934_303),
		},
	}
	require.NoError(t, repo.CreateDetails(ctx, details))

	got, err := repo.GetByID(ctx, ownerID, record.ID)
	require.NoError(t, err)

	want := *record
	want.Details = details
	if diff := cmp.Diff(&want, got, decimalComparer); diff != "" {
		t.Errorf("GetByID() mismatch (-want +got):\n%s", diff)
	}

	_, err = repo.GetByID(ctx, uuid.New(), record.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryRepository_DetailsRequireParent(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))

	err := repo.CreateDetails(context.Background(), []domain.HistoryDetail{{
		HistoryID:         uuid.New(),
		AssetID:           uuid.New(),
		AssetName:         "Orphan",
		AssetKind:         domain.HoldingKindCash,
		OriginalAmount:    decimal.NewFromInt(1),
		AdjustedAmount:    decimal.NewFromInt(1),
		AnnualRatePercent: decimal.Zero,
		FutureValue:       decimal.NewFromInt(1),
		IncreaseAmount:    decimal.Zero,
	}})

	assert.Error(t, err)
}

func TestHistoryRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewHistoryRepository(db)

	ownerID := uuid.New()
	record := &domain.HistoryRecord{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		CurrentAssets:     decimal.NewFromInt(10),
		AnnualRatePercent: decimal.Zero,
		FutureValue:       decimal.NewFromInt(10),
		IncreaseAmount:    decimal.Zero,
		CreatedAt:         time.Now(),
	}
	require.NoError(t, repo.Create(ctx, record))
	require.NoError(t, repo.CreateDetails(ctx, []domain.HistoryDetail{{
		HistoryID:         record.ID,
		AssetID:           uuid.New(),
		AssetName:         "Bank",
		AssetKind:         domain.HoldingKindCash,
		OriginalAmount:    decimal.NewFromInt(5),
		AdjustedAmount:    decimal.NewFromInt(10),
		AnnualRatePercent: decimal.Zero,
		FutureValue:       decimal.NewFromInt(10),
		IncreaseAmount:    decimal.Zero,
	}}))

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New(), record.ID), domain.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, ownerID, record.ID))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM history_detail`).Scan(&count))
	assert.Equal(t, 0, count)
	assert.ErrorIs(t, repo.Delete(ctx, ownerID, record.ID), domain.ErrNotFound)
}

func TestHistoryService_AppendThenList(t *testing.T) {
	ctx := context.Background()
	service := history.NewHistoryService(NewHistoryRepository(newTestDB(t)), logger.Nop())

	ownerID := uuid.New()
	times := []time.Time{
		time.Date(2026, 9, 30, 23, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC),
	}
	var appended []*domain.HistoryRecord
	for _, at := range times {
		at := at
		service.Now = func() time.Time { return at }
		record, err := service.Append(ctx, ownerID, history.AppendInput{
			CurrentAssets:     decimal.NewFromInt(1_000_000),
			AnnualRatePercent: decimal.NewFromInt(5),
			Years:             10,
			FutureValue:       decimal.NewFromInt(1_628_895),
		})
		require.NoError(t, err)
		appended = append(appended, record)
	}

	got, err := service.List(ctx, ownerID)
	require.NoError(t, err)

	want := []*domain.HistoryRecord{appended[1], appended[0]}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got[0].IncreaseAmount.Equal(decimal.NewFromInt(628_895)))
}
