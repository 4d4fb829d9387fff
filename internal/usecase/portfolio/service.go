package portfolio

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
)

// HoldingInput carries the user-editable fields of a holding
type HoldingInput struct {
	Kind              domain.HoldingKind
	Name              string
	Amount            decimal.Decimal
	AnnualRatePercent decimal.Decimal
	Memo              *string
}

// PortfolioService loads, groups and totals an owner's holdings
type PortfolioService struct {
	HoldingRepo domain.HoldingRepository
	Now         func() time.Time
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(holdingRepo domain.HoldingRepository) *PortfolioService {
	return &PortfolioService{
		HoldingRepo: holdingRepo,
		Now:         time.Now,
	}
}

// LoadHoldings fetches all holdings of the owner and aggregates them.
// Logic:
//   - Partition into cash and stock buckets
//   - Sort each bucket by amount descending; equal amounts keep retrieval order
//   - Sum every amount into the grand total
//
// Zero holdings is an empty snapshot, not an error.
func (s *PortfolioService) LoadHoldings(ctx context.Context, ownerID uuid.UUID) (*domain.AggregateSnapshot, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	holdings, err := s.HoldingRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, &domain.FetchError{Op: "holdings", Err: err}
	}

	return Aggregate(holdings), nil
}

// Aggregate groups holdings by kind and computes per-kind and grand totals
func Aggregate(holdings []*domain.Holding) *domain.AggregateSnapshot {
	snapshot := &domain.AggregateSnapshot{
		Holdings:     holdings,
		ByKind:       make(map[domain.HoldingKind][]*domain.Holding, len(domain.Kinds)),
		TotalsByKind: make(map[domain.HoldingKind]decimal.Decimal, len(domain.Kinds)),
		GrandTotal:   decimal.Zero,
	}
	for _, kind := range domain.Kinds {
		snapshot.ByKind[kind] = []*domain.Holding{}
		snapshot.TotalsByKind[kind] = decimal.Zero
	}

	for _, h := range holdings {
		snapshot.GrandTotal = snapshot.GrandTotal.Add(h.Amount)
		if !h.Kind.Valid() {
			continue
		}
		snapshot.ByKind[h.Kind] = append(snapshot.ByKind[h.Kind], h)
		snapshot.TotalsByKind[h.Kind] = snapshot.TotalsByKind[h.Kind].Add(h.Amount)
	}

	for _, kind := range domain.Kinds {
		group := snapshot.ByKind[kind]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Amount.GreaterThan(group[j].Amount)
		})
	}

	return snapshot
}

// AddHolding validates and inserts a new holding, then reloads the owner's holdings
func (s *PortfolioService) AddHolding(ctx context.Context, ownerID uuid.UUID, input HoldingInput) (*domain.Holding, *domain.AggregateSnapshot, error) {
	if ownerID == uuid.Nil {
		return nil, nil, domain.ErrUnauthenticated
	}

	now := s.Now().UTC()
	holding := &domain.Holding{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Kind:              input.Kind,
		Name:              input.Name,
		Amount:            input.Amount,
		AnnualRatePercent: input.AnnualRatePercent,
		Memo:              input.Memo,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	holding.Normalize()

	// Validation happens before any backend call
	if err := holding.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.HoldingRepo.Create(ctx, holding); err != nil {
		return nil, nil, &domain.PersistenceError{Op: "holding", Err: err}
	}

	snapshot, err := s.LoadHoldings(ctx, ownerID)
	if err != nil {
		return holding, nil, err
	}

	return holding, snapshot, nil
}

// UpdateHolding overwrites the editable fields of an existing holding, then reloads
func (s *PortfolioService) UpdateHolding(ctx context.Context, ownerID, id uuid.UUID, input HoldingInput) (*domain.Holding, *domain.AggregateSnapshot, error) {
	if ownerID == uuid.Nil {
		return nil, nil, domain.ErrUnauthenticated
	}

	holding := &domain.Holding{
		ID:                id,
		OwnerID:           ownerID,
		Kind:              input.Kind,
		Name:              input.Name,
		Amount:            input.Amount,
		AnnualRatePercent: input.AnnualRatePercent,
		Memo:              input.Memo,
		UpdatedAt:         s.Now().UTC(),
	}
	holding.Normalize()

	if err := holding.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.HoldingRepo.Update(ctx, holding); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, err
		}
		return nil, nil, &domain.PersistenceError{Op: "holding", Err: err}
	}

	snapshot, err := s.LoadHoldings(ctx, ownerID)
	if err != nil {
		return holding, nil, err
	}

	return holding, snapshot, nil
}

// DeleteHolding removes a holding scoped to the owner, then reloads.
// Deleting an unknown id surfaces the repository's ErrNotFound unchanged.
func (s *PortfolioService) DeleteHolding(ctx context.Context, ownerID, id uuid.UUID) (*domain.AggregateSnapshot, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	if err := s.HoldingRepo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, &domain.PersistenceError{Op: "holding", Err: err}
	}

	return s.LoadHoldings(ctx, ownerID)
}
