package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// ListByOwner retrieves the owner's holdings, most recently updated first
func (r *holdingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Holding, error) {
	query := `
		SELECT id, owner_id, kind, name, amount, annual_rate_percent, memo, created_at, updated_at
		FROM holdings
		WHERE owner_id = $1
		ORDER BY updated_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	holdings := []*domain.Holding{}
	for rows.Next() {
		var holding domain.Holding
		var memo sql.NullString
		var amountStr, rateStr string

		if err := rows.Scan(
			&holding.ID,
			&holding.OwnerID,
			&holding.Kind,
			&holding.Name,
			&amountStr,
			&rateStr,
			&memo,
			&holding.CreatedAt,
			&holding.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		// Parse amount and annual_rate_percent (NUMERIC)
		if holding.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		if holding.AnnualRatePercent, err = decimal.NewFromString(rateStr); err != nil {
			return nil, fmt.Errorf("failed to parse annual_rate_percent: %w", err)
		}
		if memo.Valid {
			holding.Memo = &memo.String
		}

		holdings = append(holdings, &holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// Create inserts a new holding
func (r *holdingRepository) Create(ctx context.Context, holding *domain.Holding) error {
	query := `
		INSERT INTO holdings (id, owner_id, kind, name, amount, annual_rate_percent, memo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var memo interface{}
	if holding.Memo != nil {
		memo = *holding.Memo
	}

	_, err := r.db.ExecContext(ctx, query,
		holding.ID,
		holding.OwnerID,
		string(holding.Kind),
		holding.Name,
		holding.Amount.String(),
		holding.AnnualRatePercent.String(),
		memo,
		holding.CreatedAt,
		holding.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}

	return nil
}

// Update overwrites the editable fields of a holding scoped to its owner
func (r *holdingRepository) Update(ctx context.Context, holding *domain.Holding) error {
	query := `
		UPDATE holdings
		SET kind = $1, name = $2, amount = $3, annual_rate_percent = $4, memo = $5, updated_at = $6
		WHERE id = $7 AND owner_id = $8
	`

	var memo interface{}
	if holding.Memo != nil {
		memo = *holding.Memo
	}

	result, err := r.db.ExecContext(ctx, query,
		string(holding.Kind),
		holding.Name,
		holding.Amount.String(),
		holding.AnnualRatePercent.String(),
		memo,
		holding.UpdatedAt,
		holding.ID,
		holding.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	return requireAffected(result, "holding")
}

// UpdateAmount sets a single holding's amount, used by stock-take saves
func (r *holdingRepository) UpdateAmount(ctx context.Context, ownerID, id uuid.UUID, amount decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE holdings
		SET amount = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
	`

	result, err := r.db.ExecContext(ctx, query, amount.String(), updatedAt, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update holding amount: %w", err)
	}

	return requireAffected(result, "holding")
}

// Delete removes a holding scoped to its owner
func (r *holdingRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	return requireAffected(result, "holding")
}

// requireAffected maps zero affected rows to domain.ErrNotFound
func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %w", what, domain.ErrNotFound)
	}
	return nil
}
