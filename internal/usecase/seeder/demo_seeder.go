package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
)

// DemoHolding defines a holding to be seeded
type DemoHolding struct {
	Kind              domain.HoldingKind
	Name              string
	Amount            int64
	AnnualRatePercent string
}

// DemoHoldings is the fixed demo portfolio
var DemoHoldings = []DemoHolding{
	{Kind: domain.HoldingKindCash, Name: "普通預金", Amount: 1_000_000, AnnualRatePercent: "0.001"},
	{Kind: domain.HoldingKindCash, Name: "定期預金", Amount: 500_000, AnnualRatePercent: "0.2"},
	{Kind: domain.HoldingKindStock, Name: "全世界株式インデックス", Amount: 2_000_000, AnnualRatePercent: "5"},
	{Kind: domain.HoldingKindStock, Name: "S&P500", Amount: 1_500_000, AnnualRatePercent: "7"},
}

// DemoSeeder handles seeding of demo holdings for an owner
type DemoSeeder struct {
	repo domain.HoldingRepository
	now  func() time.Time
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(repo domain.HoldingRepository) *DemoSeeder {
	return &DemoSeeder{
		repo: repo,
		now:  time.Now,
	}
}

// Seed ensures every demo holding exists for the owner.
// Holdings are matched by name; existing ones are left untouched.
// Returns the number of holdings created.
func (s *DemoSeeder) Seed(ctx context.Context, ownerID uuid.UUID) (int, error) {
	if ownerID == uuid.Nil {
		return 0, domain.ErrUnauthenticated
	}

	existing, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, &domain.FetchError{Op: "holdings", Err: err}
	}
	names := make(map[string]bool, len(existing))
	for _, h := range existing {
		names[h.Name] = true
	}

	created := 0
	for _, demo := range DemoHoldings {
		if names[demo.Name] {
			continue
		}

		now := s.now().UTC()
		holding := &domain.Holding{
			ID:                uuid.New(),
			OwnerID:           ownerID,
			Kind:              demo.Kind,
			Name:              demo.Name,
			Amount:            decimal.NewFromInt(demo.Amount),
			AnnualRatePercent: decimal.RequireFromString(demo.AnnualRatePercent),
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		// Validate before creating
		if err := holding.Validate(); err != nil {
			return created, err
		}

		if err := s.repo.Create(ctx, holding); err != nil {
			return created, &domain.PersistenceError{Op: "holding", Err: fmt.Errorf("seed %s: %w", demo.Name, err)}
		}
		created++
	}

	return created, nil
}
