package sqlite

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
		WHERE owner_id = ?
		ORDER BY updated_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	holdings := []*domain.Holding{}
	for rows.Next() {
		holding, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

func scanHolding(rows *sql.Rows) (*domain.Holding, error) {
	var (
		holding                domain.Holding
		idStr, ownerStr        string
		amountStr, rateStr     string
		memo                   sql.NullString
		createdStr, updatedStr string
	)

	if err := rows.Scan(
		&idStr,
		&ownerStr,
		&holding.Kind,
		&holding.Name,
		&amountStr,
		&rateStr,
		&memo,
		&createdStr,
		&updatedStr,
	); err != nil {
		return nil, fmt.Errorf("failed to scan holding: %w", err)
	}

	var err error
	if holding.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse holding id: %w", err)
	}
	if holding.OwnerID, err = uuid.Parse(ownerStr); err != nil {
		return nil, fmt.Errorf("failed to parse owner_id: %w", err)
	}
	if holding.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	if holding.AnnualRatePercent, err = decimal.NewFromString(rateStr); err != nil {
		return nil, fmt.Errorf("failed to parse annual_rate_percent: %w", err)
	}
	if memo.Valid {
		holding.Memo = &memo.String
	}
	if holding.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, err
	}
	if holding.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return nil, err
	}

	return &holding, nil
}

// Create inserts a new holding
func (r *holdingRepository) Create(ctx context.Context, holding *domain.Holding) error {
	query := `
		INSERT INTO holdings (id, owner_id, kind, name, amount, annual_rate_percent, memo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		holding.ID.String(),
		holding.OwnerID.String(),
		string(holding.Kind),
		holding.Name,
		holding.Amount.String(),
		holding.AnnualRatePercent.String(),
		nullableString(holding.Memo),
		formatTime(holding.CreatedAt),
		formatTime(holding.UpdatedAt),
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
		SET kind = ?, name = ?, amount = ?, annual_rate_percent = ?, memo = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(holding.Kind),
		holding.Name,
		holding.Amount.String(),
		holding.AnnualRatePercent.String(),
		nullableString(holding.Memo),
		formatTime(holding.UpdatedAt),
		holding.ID.String(),
		holding.OwnerID.String(),
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
		SET amount = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, amount.String(), formatTime(updatedAt), id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("failed to update holding amount: %w", err)
	}

	return requireAffected(result, "holding")
}

// Delete removes a holding scoped to its owner
func (r *holdingRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = ? AND owner_id = ?`, id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	return requireAffected(result, "holding")
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
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
