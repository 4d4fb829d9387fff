package presenter

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/usecase/portfolio"
	"github.com/simaogato/assetflow-backend/internal/usecase/stocktake"
)

func holdings(ownerID uuid.UUID) []*domain.Holding {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	memo := "給与口座"
	return []*domain.Holding{
		{
			ID: uuid.New(), OwnerID: ownerID, Kind: domain.HoldingKindCash, Name: "普通預金",
			Amount: decimal.NewFromInt(1_000_000), AnnualRatePercent: decimal.RequireFromString("0.1"),
			Memo: &memo, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New(), OwnerID: ownerID, Kind: domain.HoldingKindStock, Name: "投資信託",
			Amount: decimal.NewFromInt(2_000_000), AnnualRatePercent: decimal.NewFromInt(7),
			CreatedAt: now, UpdatedAt: now,
		},
	}
}

// Every body must be accepted by structpb so the gRPC adapter can send it unchanged
func TestBodiesAreStructCompatible(t *testing.T) {
	ownerID := uuid.New()
	hs := holdings(ownerID)
	snapshot := portfolio.Aggregate(hs)

	c := stocktake.NewCoordinator(nil, nil, zap.NewNop().Sugar())
	require.NoError(t, c.Begin(ownerID, hs, 10))
	_, err := c.SetAdjustedAmount(hs[0].ID, "1,200,000")
	require.NoError(t, err)
	session, err := StockTake(c)
	require.NoError(t, err)

	record := &domain.HistoryRecord{
		ID: uuid.New(), OwnerID: ownerID,
		CurrentAssets: decimal.NewFromInt(3_000_000), AnnualRatePercent: decimal.RequireFromString("5.275"),
		Years: 10, FutureValue: decimal.NewFromInt(4_944_348), IncreaseAmount: decimal.NewFromInt(1_944_348),
		CreatedAt: time.Now(),
		Details: []domain.HistoryDetail{{
			AssetID: hs[0].ID, AssetName: hs[0].Name, AssetKind: hs[0].Kind,
			OriginalAmount: decimal.NewFromInt(1_000_000), AdjustedAmount: decimal.NewFromInt(1_200_000),
			AnnualRatePercent: hs[0].AnnualRatePercent,
		}},
	}

	bodies := map[string]M{
		"holding":  Holding(hs[0]),
		"snapshot": Snapshot(snapshot),
		"record":   Record(record),
		"groups":   HistoryGroups([]*domain.HistoryRecord{record}, time.Now()),
		"session":  session,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := structpb.NewStruct(body)
			assert.NoError(t, err)
		})
	}
}

func TestSnapshot(t *testing.T) {
	snapshot := portfolio.Aggregate(holdings(uuid.New()))

	body := Snapshot(snapshot)

	assert.Equal(t, "3000000", body["grand_total"])
	assert.Equal(t, "3,000,000", body["grand_total_display"])
	assert.Equal(t, false, body["empty"])
	assert.Equal(t, int64(33), body["share_by_kind"].(M)["cash"])
	assert.Len(t, body["holdings_by_kind"].(M)["stock"], 1)
}

func TestHolding_OmitsMissingMemo(t *testing.T) {
	hs := holdings(uuid.New())

	assert.Equal(t, "給与口座", Holding(hs[0])["memo"])
	assert.NotContains(t, Holding(hs[1]), "memo")
	assert.Equal(t, "2024-05-01T09:00:00Z", Holding(hs[1])["created_at"])
}

func TestRecord_DetailsOnlyWhenLoaded(t *testing.T) {
	record := &domain.HistoryRecord{ID: uuid.New(), AnnualRatePercent: decimal.RequireFromString("5.275")}

	body := Record(record)
	assert.NotContains(t, body, "details")
	assert.Equal(t, "5.28", body["annual_rate_percent"])

	record.Details = []domain.HistoryDetail{}
	assert.Len(t, Record(record)["details"], 0)
}

func TestProjection(t *testing.T) {
	body := Projection(domain.ProjectionResult{
		Principal:         decimal.NewFromInt(1_000_000),
		AnnualRatePercent: decimal.NewFromInt(5),
		Years:             10,
		FutureValue:       decimal.NewFromInt(1_628_895),
		IncreaseAmount:    decimal.NewFromInt(628_895),
	})

	assert.Equal(t, "1,628,895", body["future_value_display"])
	assert.Equal(t, "+628,895", body["increase_amount_display"])
	assert.Equal(t, 10, body["years"])
}
