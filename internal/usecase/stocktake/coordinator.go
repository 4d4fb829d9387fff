package stocktake

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
	"github.com/simaogato/assetflow-backend/internal/usecase/projection"
	"go.uber.org/zap"
)

// State is the lifecycle state of a stock-take session
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	default:
		return "idle"
	}
}

var hundred = decimal.NewFromInt(100)

// HistoryRecorder appends the history record written by a successful save
type HistoryRecorder interface {
	Append(ctx context.Context, ownerID uuid.UUID, input history.AppendInput) (*domain.HistoryRecord, error)
}

// Line is one holding inside a session
type Line struct {
	Holding           domain.Holding
	OriginalAmount    decimal.Decimal
	AdjustedAmount    decimal.Decimal
	Difference        decimal.Decimal // adjusted - original
	DifferencePercent decimal.Decimal // difference / original * 100, 0 when original is 0
}

// Touched reports whether the adjusted amount differs from the original
func (l *Line) Touched() bool {
	return !l.AdjustedAmount.Equal(l.OriginalAmount)
}

func (l *Line) recompute() {
	l.Difference = l.AdjustedAmount.Sub(l.OriginalAmount)
	if l.OriginalAmount.IsZero() {
		l.DifferencePercent = decimal.Zero
		return
	}
	l.DifferencePercent = l.Difference.Div(l.OriginalAmount).Mul(hundred)
}

// Totals are the aggregate figures of a session.
// Future values are sums of per-holding projections, each at the holding's own rate.
type Totals struct {
	OriginalTotal       decimal.Decimal
	AdjustedTotal       decimal.Decimal
	OriginalFutureValue decimal.Decimal
	AdjustedFutureValue decimal.Decimal
	TotalDifference     decimal.Decimal
	FutureDifference    decimal.Decimal
}

// SaveResult describes a completed save
type SaveResult struct {
	Totals       Totals
	WeightedRate decimal.Decimal
	Updated      []uuid.UUID
	Record       *domain.HistoryRecord
}

// Coordinator runs one stock-take session: Idle -> Editing -> Saving -> Idle, or Editing -> Idle on cancel.
// Only one save runs at a time; a save requested while saving is rejected, not queued.
type Coordinator struct {
	holdingRepo domain.HoldingRepository
	recorder    HistoryRecorder
	logger      *zap.SugaredLogger
	now         func() time.Time

	mu      sync.Mutex
	state   State
	ownerID uuid.UUID
	years   int
	lines   []*Line
	index   map[uuid.UUID]int
	dirty   bool
}

// NewCoordinator creates an idle Coordinator
func NewCoordinator(holdingRepo domain.HoldingRepository, recorder HistoryRecorder, logger *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		holdingRepo: holdingRepo,
		recorder:    recorder,
		logger:      logger,
		now:         time.Now,
	}
}

// Begin enters Editing, snapshotting every holding's amount as its original and adjusted amount
func (c *Coordinator) Begin(ownerID uuid.UUID, holdings []*domain.Holding, years int) error {
	if ownerID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	if years < 0 || years > domain.MaxYears {
		return &domain.ComputationError{Reason: fmt.Sprintf("years must be between 0 and %d", domain.MaxYears)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return domain.ErrSessionActive
	}

	c.ownerID = ownerID
	c.years = years
	c.lines = make([]*Line, 0, len(holdings))
	c.index = make(map[uuid.UUID]int, len(holdings))
	c.dirty = false
	for _, h := range holdings {
		line := &Line{
			Holding:        *h,
			OriginalAmount: h.Amount,
			AdjustedAmount: h.Amount,
		}
		line.recompute()
		c.index[h.ID] = len(c.lines)
		c.lines = append(c.lines, line)
	}
	c.state = StateEditing

	return nil
}

// State returns the current state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dirty reports whether any amount was edited since Begin
func (c *Coordinator) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Years returns the projection horizon of the session
func (c *Coordinator) Years() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.years
}

// Lines returns a copy of the session lines in holding retrieval order
func (c *Coordinator) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, *l)
	}
	return out
}

// ParseAmount keeps only the ASCII digits of raw and parses them; empty input is 0
func ParseAmount(raw string) decimal.Decimal {
	digits := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(digits)
}

// AmountText renders a numeric input as the digits ParseAmount keeps.
// The sign is dropped the same way it is for text input; non-finite values are empty.
func AmountText(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(math.Floor(math.Abs(v)), 'f', 0, 64)
}

// SetAdjustedAmount stores a new adjusted amount for one holding and marks the session dirty
func (c *Coordinator) SetAdjustedAmount(holdingID uuid.UUID, raw string) (Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireEditing(); err != nil {
		return Line{}, err
	}

	i, ok := c.index[holdingID]
	if !ok {
		return Line{}, domain.ErrNotFound
	}

	line := c.lines[i]
	line.AdjustedAmount = ParseAmount(raw)
	line.recompute()
	c.dirty = true

	return *line, nil
}

// ComputeTotals returns the original and adjusted totals and future values
func (c *Coordinator) ComputeTotals() (Totals, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return Totals{}, domain.ErrNoSession
	}
	return computeTotals(c.lines, c.years)
}

func computeTotals(lines []*Line, years int) (Totals, error) {
	totals := Totals{
		OriginalTotal:       decimal.Zero,
		AdjustedTotal:       decimal.Zero,
		OriginalFutureValue: decimal.Zero,
		AdjustedFutureValue: decimal.Zero,
	}

	for _, l := range lines {
		original, err := projection.Project(l.OriginalAmount, l.Holding.AnnualRatePercent, years)
		if err != nil {
			return Totals{}, err
		}
		adjusted, err := projection.Project(l.AdjustedAmount, l.Holding.AnnualRatePercent, years)
		if err != nil {
			return Totals{}, err
		}

		totals.OriginalTotal = totals.OriginalTotal.Add(l.OriginalAmount)
		totals.AdjustedTotal = totals.AdjustedTotal.Add(l.AdjustedAmount)
		totals.OriginalFutureValue = totals.OriginalFutureValue.Add(original.FutureValue)
		totals.AdjustedFutureValue = totals.AdjustedFutureValue.Add(adjusted.FutureValue)
	}

	totals.TotalDifference = totals.AdjustedTotal.Sub(totals.OriginalTotal)
	totals.FutureDifference = totals.AdjustedFutureValue.Sub(totals.OriginalFutureValue)
	return totals, nil
}

// Save persists every touched holding and records the session in history.
// Logic:
//  1. Validate touched amounts; nothing is written if one is out of bounds
//  2. Enter Saving and issue all amount updates in parallel, joining on all of them
//  3. If some updates fail, return to Editing with the successful ones adopted as
//     originals and report a PartialSaveError naming the failures (no rollback)
//  4. Otherwise write one history record with the weighted-average rate and a detail per
//     touched holding, then return to Idle
//
// In-flight writes are not cancelled when ctx is.
func (c *Coordinator) Save(ctx context.Context) (*SaveResult, error) {
	c.mu.Lock()
	switch c.state {
	case StateSaving:
		c.mu.Unlock()
		return nil, domain.ErrSaveInProgress
	case StateIdle:
		c.mu.Unlock()
		return nil, domain.ErrNoSession
	}

	touched := make([]*Line, 0, len(c.lines))
	for _, l := range c.lines {
		if l.Touched() {
			if err := domain.ValidateAmount(l.AdjustedAmount); err != nil {
				c.mu.Unlock()
				return nil, err
			}
			touched = append(touched, l)
		}
	}

	totals, err := computeTotals(c.lines, c.years)
	if err != nil {
		c.mu.Unlock()
		c.logger.Errorw("stock-take totals could not be computed", "owner_id", c.ownerID, "error", err)
		return nil, err
	}

	ownerID := c.ownerID
	years := c.years
	adjustedAmounts := make([]decimal.Decimal, 0, len(c.lines))
	rates := make([]decimal.Decimal, 0, len(c.lines))
	for _, l := range c.lines {
		adjustedAmounts = append(adjustedAmounts, l.AdjustedAmount)
		rates = append(rates, l.Holding.AnnualRatePercent)
	}
	updates := make([]Line, 0, len(touched))
	for _, l := range touched {
		updates = append(updates, *l)
	}
	c.state = StateSaving
	c.mu.Unlock()

	writeCtx := context.WithoutCancel(ctx)
	failed := c.writeAmounts(writeCtx, ownerID, updates)

	c.mu.Lock()
	updated := make([]uuid.UUID, 0, len(updates))
	for _, u := range updates {
		if _, bad := failed[u.Holding.ID]; bad {
			continue
		}
		updated = append(updated, u.Holding.ID)
		c.adopt(u.Holding.ID, u.AdjustedAmount)
	}

	if len(failed) > 0 {
		c.state = StateEditing
		c.mu.Unlock()
		c.logger.Warnw("stock-take saved partially",
			"owner_id", ownerID,
			"updated", len(updated),
			"failed", len(failed),
		)
		return nil, &domain.PartialSaveError{Failed: failed}
	}
	c.mu.Unlock()

	weightedRate, ok := projection.WeightedRate(adjustedAmounts, rates)
	if !ok {
		weightedRate = decimal.Zero
	}

	details := make([]history.DetailInput, 0, len(updates))
	for _, u := range updates {
		fv, err := projection.Project(u.AdjustedAmount, u.Holding.AnnualRatePercent, years)
		if err != nil {
			c.setState(StateEditing)
			return nil, err
		}
		details = append(details, history.DetailInput{
			AssetID:           u.Holding.ID,
			AssetName:         u.Holding.Name,
			AssetKind:         u.Holding.Kind,
			OriginalAmount:    u.OriginalAmount,
			AdjustedAmount:    u.AdjustedAmount,
			AnnualRatePercent: u.Holding.AnnualRatePercent,
			FutureValue:       fv.FutureValue,
		})
	}

	// The session stays in Saving while history is written without the lock held
	record, err := c.recorder.Append(writeCtx, ownerID, history.AppendInput{
		CurrentAssets:     totals.AdjustedTotal,
		AnnualRatePercent: weightedRate,
		Years:             years,
		FutureValue:       totals.AdjustedFutureValue,
		Details:           details,
	})
	if err != nil {
		// Holding updates stay; a retry only writes the history record
		c.setState(StateEditing)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	return &SaveResult{
		Totals:       totals,
		WeightedRate: weightedRate,
		Updated:      updated,
		Record:       record,
	}, nil
}

// writeAmounts fires one update per line and returns the failures keyed by holding id
func (c *Coordinator) writeAmounts(ctx context.Context, ownerID uuid.UUID, updates []Line) map[uuid.UUID]error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed = map[uuid.UUID]error{}
	)
	updatedAt := c.now().UTC()

	for _, u := range updates {
		wg.Add(1)
		go func(id uuid.UUID, amount decimal.Decimal) {
			defer wg.Done()
			if err := c.holdingRepo.UpdateAmount(ctx, ownerID, id, amount, updatedAt); err != nil {
				mu.Lock()
				failed[id] = err
				mu.Unlock()
			}
		}(u.Holding.ID, u.AdjustedAmount)
	}
	wg.Wait()

	return failed
}

func (c *Coordinator) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// adopt makes a persisted amount the new original of its line
func (c *Coordinator) adopt(id uuid.UUID, amount decimal.Decimal) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	line := c.lines[i]
	line.OriginalAmount = amount
	line.Holding.Amount = amount
	line.recompute()
}

// Cancel discards all adjustments and returns to Idle.
// A session with edits requires confirm; a running save cannot be cancelled.
func (c *Coordinator) Cancel(confirm bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		return nil
	case StateSaving:
		return domain.ErrSaveInProgress
	}

	if c.dirty && !confirm {
		return domain.ErrUnsavedChanges
	}

	c.reset()
	return nil
}

func (c *Coordinator) requireEditing() error {
	switch c.state {
	case StateIdle:
		return domain.ErrNoSession
	case StateSaving:
		return domain.ErrSaveInProgress
	}
	return nil
}

func (c *Coordinator) reset() {
	c.state = StateIdle
	c.lines = nil
	c.index = nil
	c.dirty = false
}
