package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldingKind represents the kind of asset a holding is
type HoldingKind string

const (
	HoldingKindCash  HoldingKind = "cash"
	HoldingKindStock HoldingKind = "stock"
)

// Bounds enforced on every holding write
const (
	MaxNameLength = 50
	MaxMemoLength = 200

	// MaxYears is the longest projection horizon accepted
	MaxYears = 100
)

var (
	// MaxAmount is the largest amount a holding may carry (999,999,999,999)
	MaxAmount = decimal.NewFromInt(999_999_999_999)

	// MaxRatePercent is the largest annual rate accepted, in percent
	MaxRatePercent = decimal.NewFromInt(100)
)

// Kinds lists the holding kinds in display order
var Kinds = []HoldingKind{HoldingKindCash, HoldingKindStock}

// Valid reports whether k is a known holding kind
func (k HoldingKind) Valid() bool {
	return k == HoldingKindCash || k == HoldingKindStock
}

// DisplayName returns the localized label of the kind
func (k HoldingKind) DisplayName() string {
	switch k {
	case HoldingKindCash:
		return "現金"
	case HoldingKindStock:
		return "株式"
	default:
		return "資産"
	}
}

// DefaultRatePercent is the rate suggested when adding a holding of this kind
func (k HoldingKind) DefaultRatePercent() decimal.Decimal {
	switch k {
	case HoldingKindCash:
		return decimal.RequireFromString("0.001")
	case HoldingKindStock:
		return decimal.NewFromInt(5)
	default:
		return decimal.Zero
	}
}

// Holding is a single cash or stock asset owned by one user
type Holding struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	Kind              HoldingKind
	Name              string
	Amount            decimal.Decimal // 0 < amount <= MaxAmount
	AnnualRatePercent decimal.Decimal // 0 <= rate <= 100
	Memo              *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate ensures the holding adheres to the write bounds.
// Values outside the bounds are rejected, never clamped.
func (h *Holding) Validate() error {
	if !h.Kind.Valid() {
		return newValidationError("kind", "kind must be cash or stock")
	}

	name := strings.TrimSpace(h.Name)
	if name == "" {
		return newValidationError("name", "name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return newValidationError("name", "name must be at most 50 characters")
	}

	if err := ValidateAmount(h.Amount); err != nil {
		return err
	}

	if err := ValidateRate(h.AnnualRatePercent); err != nil {
		return err
	}

	if h.Memo != nil && utf8.RuneCountInString(*h.Memo) > MaxMemoLength {
		return newValidationError("memo", "memo must be at most 200 characters")
	}

	return nil
}

// ValidateAmount checks a holding amount lies in (0, MaxAmount]
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return newValidationError("amount", "amount must be positive")
	}
	if amount.GreaterThan(MaxAmount) {
		return newValidationError("amount", "amount must not exceed 999,999,999,999")
	}
	return nil
}

// ValidateRate checks an annual rate lies in [0, MaxRatePercent]
func ValidateRate(ratePercent decimal.Decimal) error {
	if ratePercent.IsNegative() || ratePercent.GreaterThan(MaxRatePercent) {
		return newValidationError("annual_rate_percent", "annual rate must be between 0 and 100")
	}
	return nil
}

// ValidateYears checks a projection horizon lies in [0, MaxYears]
func ValidateYears(years int) error {
	if years < 0 || years > MaxYears {
		return newValidationError("years", "years must be between 0 and 100")
	}
	return nil
}

// Normalize trims the name and drops an empty memo
func (h *Holding) Normalize() {
	h.Name = strings.TrimSpace(h.Name)
	if h.Memo != nil {
		memo := strings.TrimSpace(*h.Memo)
		if memo == "" {
			h.Memo = nil
		} else {
			h.Memo = &memo
		}
	}
}

// AggregateSnapshot is the derived view of an owner's holdings.
// It is recomputed on every load and never stored.
type AggregateSnapshot struct {
	Holdings     []*Holding // retrieval order
	ByKind       map[HoldingKind][]*Holding
	TotalsByKind map[HoldingKind]decimal.Decimal
	GrandTotal   decimal.Decimal
}

// Empty reports whether the owner has no holdings
func (s *AggregateSnapshot) Empty() bool {
	return len(s.Holdings) == 0
}

// Share returns amount as a whole percentage of the grand total (0 when the total is 0)
func (s *AggregateSnapshot) Share(amount decimal.Decimal) int64 {
	if s.GrandTotal.IsZero() {
		return 0
	}
	return amount.Mul(decimal.NewFromInt(100)).Div(s.GrandTotal).Round(0).IntPart()
}

// Find returns the holding with id, or nil
func (s *AggregateSnapshot) Find(id uuid.UUID) *Holding {
	for _, h := range s.Holdings {
		if h.ID == id {
			return h
		}
	}
	return nil
}
