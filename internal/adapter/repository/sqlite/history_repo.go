package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
)

// historyRepository implements domain.HistoryRepository
type historyRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) domain.HistoryRepository {
	return &historyRepository{db: db}
}

// Create inserts a history record without its details
func (r *historyRepository) Create(ctx context.Context, record *domain.HistoryRecord) error {
	query := `
		INSERT INTO history (id, owner_id, current_assets, annual_rate_percent, years, future_value, increase_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID.String(),
		record.OwnerID.String(),
		record.CurrentAssets.String(),
		record.AnnualRatePercent.String(),
		record.Years,
		record.FutureValue.String(),
		record.IncreaseAmount.String(),
		formatTime(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create history record: %w", err)
	}

	return nil
}

// CreateDetails inserts detail rows in one transaction
func (r *historyRepository) CreateDetails(ctx context.Context, details []domain.HistoryDetail) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history_detail
		(history_id, asset_id, asset_name, asset_kind, original_amount, adjusted_amount, annual_rate_percent, future_value, increase_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history detail insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range details {
		if _, err := stmt.ExecContext(ctx,
			d.HistoryID.String(),
			d.AssetID.String(),
			d.AssetName,
			string(d.AssetKind),
			d.OriginalAmount.String(),
			d.AdjustedAmount.String(),
			d.AnnualRatePercent.String(),
			d.FutureValue.String(),
			d.IncreaseAmount.String(),
		); err != nil {
			return fmt.Errorf("failed to create history detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history details: %w", err)
	}
	return nil
}

const selectHistory = `
	SELECT id, owner_id, current_assets, annual_rate_percent, years, future_value, increase_amount, created_at
	FROM history
`

// ListByOwner retrieves the owner's records, newest first, without details
func (r *historyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectHistory+`WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	records := []*domain.HistoryRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return records, nil
}

// GetByID retrieves one record with its details
func (r *historyRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.HistoryRecord, error) {
	row := r.db.QueryRowContext(ctx, selectHistory+`WHERE id = ? AND owner_id = ?`, id.String(), ownerID.String())
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("history record %w", domain.ErrNotFound)
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT history_id, asset_id, asset_name, asset_kind, original_amount, adjusted_amount,
		       annual_rate_percent, future_value, increase_amount
		FROM history_detail
		WHERE history_id = ?
		ORDER BY id
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list history details: %w", err)
	}
	defer rows.Close()

	record.Details = []domain.HistoryDetail{}
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		record.Details = append(record.Details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history details: %w", err)
	}

	return record, nil
}

// Delete removes a record scoped to its owner; details cascade
func (r *historyRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE id = ? AND owner_id = ?`, id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}

	return requireAffected(result, "history record")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*domain.HistoryRecord, error) {
	var (
		record                             domain.HistoryRecord
		idStr, ownerStr, createdStr        string
		currentStr, rateStr, fvStr, incStr string
	)

	if err := s.Scan(&idStr, &ownerStr, &currentStr, &rateStr, &record.Years, &fvStr, &incStr, &createdStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history record: %w", err)
	}

	var err error
	if record.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse history id: %w", err)
	}
	if record.OwnerID, err = uuid.Parse(ownerStr); err != nil {
		return nil, fmt.Errorf("failed to parse owner_id: %w", err)
	}
	decimals, err := parseDecimals(currentStr, rateStr, fvStr, incStr)
	if err != nil {
		return nil, err
	}
	record.CurrentAssets, record.AnnualRatePercent, record.FutureValue, record.IncreaseAmount =
		decimals[0], decimals[1], decimals[2], decimals[3]
	if record.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, err
	}

	return &record, nil
}

func scanDetail(s scanner) (domain.HistoryDetail, error) {
	var (
		detail                                  domain.HistoryDetail
		historyStr, assetStr                    string
		origStr, adjStr, rateStr, fvStr, incStr string
	)

	if err := s.Scan(&historyStr, &assetStr, &detail.AssetName, &detail.AssetKind,
		&origStr, &adjStr, &rateStr, &fvStr, &incStr); err != nil {
		return detail, fmt.Errorf("failed to scan history detail: %w", err)
	}

	var err error
	if detail.HistoryID, err = uuid.Parse(historyStr); err != nil {
		return detail, fmt.Errorf("failed to parse history_id: %w", err)
	}
	if detail.AssetID, err = uuid.Parse(assetStr); err != nil {
		return detail, fmt.Errorf("failed to parse asset_id: %w", err)
	}
	decimals, err := parseDecimals(origStr, adjStr, rateStr, fvStr, incStr)
	if err != nil {
		return detail, err
	}
	detail.OriginalAmount, detail.AdjustedAmount, detail.AnnualRatePercent, detail.FutureValue, detail.IncreaseAmount =
		decimals[0], decimals[1], decimals[2], decimals[3], decimals[4]

	return detail, nil
}

func parseDecimals(values ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse decimal %q: %w", v, err)
		}
		out[i] = d
	}
	return out, nil
}
