package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldingRepository defines the interface for holding persistence operations.
// Every method is scoped to the owner; no row is visible across owners.
type HoldingRepository interface {
	// ListByOwner retrieves all holdings of an owner, most recently updated first.
	// An owner without holdings yields an empty slice, not an error.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Holding, error)

	// Create inserts a new holding
	Create(ctx context.Context, holding *Holding) error

	// Update overwrites name, amount, rate, memo and updated_at of an existing holding.
	// Returns ErrNotFound if no holding matches id and owner.
	Update(ctx context.Context, holding *Holding) error

	// UpdateAmount sets the amount of one holding.
	// Returns ErrNotFound if no holding matches id and owner.
	UpdateAmount(ctx context.Context, ownerID, id uuid.UUID, amount decimal.Decimal, updatedAt time.Time) error

	// Delete removes a holding. Returns ErrNotFound if no holding matches id and owner.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// HistoryRepository defines the interface for history persistence operations
type HistoryRepository interface {
	// Create inserts a history record (without details)
	Create(ctx context.Context, record *HistoryRecord) error

	// CreateDetails inserts the detail rows of an existing record
	CreateDetails(ctx context.Context, details []HistoryDetail) error

	// ListByOwner retrieves all records of an owner ordered by created_at descending
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*HistoryRecord, error)

	// GetByID retrieves one record with its details. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*HistoryRecord, error)

	// Delete removes a record and, by cascade, its details. Returns ErrNotFound if absent.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
