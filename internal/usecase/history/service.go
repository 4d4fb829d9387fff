package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"go.uber.org/zap"
)

// ThisMonthLabel is the group label for records created in the current calendar month
const ThisMonthLabel = "今月"

// AppendInput represents the input for appending a history record
type AppendInput struct {
	CurrentAssets     decimal.Decimal
	AnnualRatePercent decimal.Decimal
	Years             int
	FutureValue       decimal.Decimal
	Details           []DetailInput
}

// DetailInput is one holding touched by a stock-take
type DetailInput struct {
	AssetID           uuid.UUID
	AssetName         string
	AssetKind         domain.HoldingKind
	OriginalAmount    decimal.Decimal
	AdjustedAmount    decimal.Decimal
	AnnualRatePercent decimal.Decimal
	FutureValue       decimal.Decimal
}

// HistoryService persists and retrieves projection and stock-take snapshots
type HistoryService struct {
	HistoryRepo domain.HistoryRepository
	Logger      *zap.SugaredLogger
	Now         func() time.Time
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(historyRepo domain.HistoryRepository, logger *zap.SugaredLogger) *HistoryService {
	return &HistoryService{
		HistoryRepo: historyRepo,
		Logger:      logger,
		Now:         time.Now,
	}
}

// List retrieves all records of the owner, newest first
func (s *HistoryService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.HistoryRecord, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	records, err := s.HistoryRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, &domain.FetchError{Op: "history", Err: err}
	}
	return records, nil
}

// Get retrieves one record with its details
func (s *HistoryService) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.HistoryRecord, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	record, err := s.HistoryRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, &domain.FetchError{Op: "history record", Err: err}
	}
	return record, nil
}

// Append inserts a history record and, if supplied, its detail rows.
// Logic:
//   - increase_amount = future_value - current_assets (also per detail)
//   - The call succeeds once the primary record is inserted
//   - A failed detail insert is logged and does not roll back the record
//
// A detail failure therefore leaves a record without details; this is a known gap.
func (s *HistoryService) Append(ctx context.Context, ownerID uuid.UUID, input AppendInput) (*domain.HistoryRecord, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if input.CurrentAssets.IsNegative() || input.FutureValue.IsNegative() || input.Years < 0 {
		return nil, &domain.ComputationError{Reason: "history values must not be negative"}
	}
	if input.FutureValue.LessThan(input.CurrentAssets) {
		return nil, &domain.ComputationError{Reason: "increase amount must not be negative"}
	}

	record := &domain.HistoryRecord{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		CurrentAssets:     input.CurrentAssets,
		AnnualRatePercent: input.AnnualRatePercent,
		Years:             input.Years,
		FutureValue:       input.FutureValue,
		IncreaseAmount:    input.FutureValue.Sub(input.CurrentAssets),
		CreatedAt:         s.Now().UTC(),
	}

	if err := s.HistoryRepo.Create(ctx, record); err != nil {
		return nil, &domain.PersistenceError{Op: "history record", Err: err}
	}

	if len(input.Details) == 0 {
		return record, nil
	}

	details := make([]domain.HistoryDetail, 0, len(input.Details))
	for _, d := range input.Details {
		details = append(details, domain.HistoryDetail{
			HistoryID:         record.ID,
			AssetID:           d.AssetID,
			AssetName:         d.AssetName,
			AssetKind:         d.AssetKind,
			OriginalAmount:    d.OriginalAmount,
			AdjustedAmount:    d.AdjustedAmount,
			AnnualRatePercent: d.AnnualRatePercent,
			FutureValue:       d.FutureValue,
			IncreaseAmount:    d.FutureValue.Sub(d.AdjustedAmount),
		})
	}

	if err := s.HistoryRepo.CreateDetails(ctx, details); err != nil {
		s.Logger.Warnw("history details not saved; record kept without details",
			"history_id", record.ID,
			"owner_id", ownerID,
			"details", len(details),
			"error", err,
		)
		return record, nil
	}

	record.Details = details
	return record, nil
}

// Remove deletes one record and its details. Irreversible.
func (s *HistoryService) Remove(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil {
		return domain.ErrUnauthenticated
	}

	if err := s.HistoryRepo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return &domain.PersistenceError{Op: "history record", Err: err}
	}
	return nil
}

// GroupByMonth buckets records by the calendar month of created_at.
// Records in now's year and month are labelled ThisMonthLabel, others "{year}年{month}月".
// Buckets appear in first-seen order and keep the input order inside each bucket.
func GroupByMonth(records []*domain.HistoryRecord, now time.Time) []domain.HistoryGroup {
	groups := []domain.HistoryGroup{}
	index := map[string]int{}

	for _, record := range records {
		label := MonthLabel(record.CreatedAt, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, domain.HistoryGroup{Label: label})
		}
		groups[i].Records = append(groups[i].Records, record)
	}

	return groups
}

// MonthLabel returns the group label of t relative to now, in now's location
func MonthLabel(t, now time.Time) string {
	t = t.In(now.Location())
	if t.Year() == now.Year() && t.Month() == now.Month() {
		return ThisMonthLabel
	}
	return fmt.Sprintf("%d年%d月", t.Year(), int(t.Month()))
}
