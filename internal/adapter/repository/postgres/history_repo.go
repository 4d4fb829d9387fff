package postgres

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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.OwnerID,
		record.CurrentAssets.String(),
		record.AnnualRatePercent.String(),
		record.Years,
		record.FutureValue.String(),
		record.IncreaseAmount.String(),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create history record: %w", err)
	}

	return nil
}

// CreateDetails inserts all detail rows in a database transaction
func (r *historyRepository) CreateDetails(ctx context.Context, details []domain.HistoryDetail) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertDetailQuery := `
		INSERT INTO history_detail
		(history_id, asset_id, asset_name, asset_kind, original_amount, adjusted_amount, annual_rate_percent, future_value, increase_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, d := range details {
		_, err = dbTx.ExecContext(ctx, insertDetailQuery,
			d.HistoryID,
			d.AssetID,
			d.AssetName,
			string(d.AssetKind),
			d.OriginalAmount.String(),
			d.AdjustedAmount.String(),
			d.AnnualRatePercent.String(),
			d.FutureValue.String(),
			d.IncreaseAmount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert history detail: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history details: %w", err)
	}

	return nil
}

// ListByOwner retrieves the owner's records, newest first, without details
func (r *historyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.HistoryRecord, error) {
	query := `
		SELECT id, owner_id, current_assets, annual_rate_percent, years, future_value, increase_amount, created_at
		FROM history
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
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
	query := `
		SELECT id, owner_id, current_assets, annual_rate_percent, years, future_value, increase_amount, created_at
		FROM history
		WHERE id = $1 AND owner_id = $2
	`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("history record %w", domain.ErrNotFound)
		}
		return nil, err
	}

	detailQuery := `
		SELECT history_id, asset_id, asset_name, asset_kind, original_amount, adjusted_amount,
		       annual_rate_percent, future_value, increase_amount
		FROM history_detail
		WHERE history_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, detailQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list history details: %w", err)
	}
	defer rows.Close()

	record.Details = []domain.HistoryDetail{}
	for rows.Next() {
		var d domain.HistoryDetail
		var origStr, adjStr, rateStr, fvStr, incStr string

		if err := rows.Scan(&d.HistoryID, &d.AssetID, &d.AssetName, &d.AssetKind,
			&origStr, &adjStr, &rateStr, &fvStr, &incStr); err != nil {
			return nil, fmt.Errorf("failed to scan history detail: %w", err)
		}

		values, err := parseDecimals(origStr, adjStr, rateStr, fvStr, incStr)
		if err != nil {
			return nil, err
		}
		d.OriginalAmount, d.AdjustedAmount, d.AnnualRatePercent, d.FutureValue, d.IncreaseAmount =
			values[0], values[1], values[2], values[3], values[4]

		record.Details = append(record.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history details: %w", err)
	}

	return record, nil
}

// Delete removes a record scoped to its owner; details cascade
func (r *historyRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}

	return requireAffected(result, "history record")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*domain.HistoryRecord, error) {
	var record domain.HistoryRecord
	var currentStr, rateStr, fvStr, incStr string

	if err := s.Scan(
		&record.ID,
		&record.OwnerID,
		&currentStr,
		&rateStr,
		&record.Years,
		&fvStr,
		&incStr,
		&record.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history record: %w", err)
	}

	values, err := parseDecimals(currentStr, rateStr, fvStr, incStr)
	if err != nil {
		return nil, err
	}
	record.CurrentAssets, record.AnnualRatePercent, record.FutureValue, record.IncreaseAmount =
		values[0], values[1], values[2], values[3]

	return &record, nil
}

// parseDecimals parses NUMERIC columns scanned as strings
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
