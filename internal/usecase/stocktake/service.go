package stocktake

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"go.uber.org/zap"
)

// HoldingsLoader loads the aggregate snapshot a session starts from
type HoldingsLoader interface {
	LoadHoldings(ctx context.Context, ownerID uuid.UUID) (*domain.AggregateSnapshot, error)
}

// StockTakeService keeps at most one session per owner and serializes saves per owner
type StockTakeService struct {
	Loader       HoldingsLoader
	HoldingRepo  domain.HoldingRepository
	Recorder     HistoryRecorder
	Logger       *zap.SugaredLogger
	DefaultYears int

	mu       sync.Mutex
	sessions map[uuid.UUID]*Coordinator
	saving   map[uuid.UUID]bool
}

// NewStockTakeService creates a new StockTakeService instance
func NewStockTakeService(loader HoldingsLoader, holdingRepo domain.HoldingRepository, recorder HistoryRecorder, logger *zap.SugaredLogger, defaultYears int) *StockTakeService {
	return &StockTakeService{
		Loader:       loader,
		HoldingRepo:  holdingRepo,
		Recorder:     recorder,
		Logger:       logger,
		DefaultYears: defaultYears,
		sessions:     make(map[uuid.UUID]*Coordinator),
		saving:       make(map[uuid.UUID]bool),
	}
}

// Begin loads the owner's holdings and opens a new session.
// An open editing session is replaced; a running save rejects the call.
// years == 0 selects DefaultYears.
func (s *StockTakeService) Begin(ctx context.Context, ownerID uuid.UUID, years int) (*Coordinator, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if years == 0 {
		years = s.DefaultYears
	}
	if err := domain.ValidateYears(years); err != nil {
		return nil, err
	}

	s.mu.Lock()
	busy := s.saving[ownerID]
	s.mu.Unlock()
	if busy {
		return nil, domain.ErrSaveInProgress
	}

	snapshot, err := s.Loader.LoadHoldings(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	c := NewCoordinator(s.HoldingRepo, s.Recorder, s.Logger)
	if err := c.Begin(ownerID, snapshot.Holdings, years); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving[ownerID] {
		return nil, domain.ErrSaveInProgress
	}
	if prev, ok := s.sessions[ownerID]; ok && prev.Dirty() {
		s.Logger.Infow("stock-take session replaced with unsaved edits", "owner_id", ownerID)
	}
	s.sessions[ownerID] = c

	return c, nil
}

// Session returns the owner's open session
func (s *StockTakeService) Session(ownerID uuid.UUID) (*Coordinator, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[ownerID]
	if !ok {
		return nil, domain.ErrNoSession
	}
	return c, nil
}

// Save saves the owner's session; the session is closed on success
func (s *StockTakeService) Save(ctx context.Context, ownerID uuid.UUID) (*SaveResult, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	s.mu.Lock()
	c, ok := s.sessions[ownerID]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrNoSession
	}
	if s.saving[ownerID] {
		s.mu.Unlock()
		return nil, domain.ErrSaveInProgress
	}
	s.saving[ownerID] = true
	s.mu.Unlock()

	result, err := c.Save(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saving, ownerID)
	if err != nil {
		return nil, err
	}
	if s.sessions[ownerID] == c {
		delete(s.sessions, ownerID)
	}

	s.Logger.Infow("stock-take saved",
		"owner_id", ownerID,
		"updated", len(result.Updated),
		"history_id", result.Record.ID,
	)
	return result, nil
}

// Cancel discards the owner's session. Unsaved edits require confirm.
func (s *StockTakeService) Cancel(ownerID uuid.UUID, confirm bool) error {
	if ownerID == uuid.Nil {
		return domain.ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[ownerID]
	if !ok {
		return nil
	}
	if s.saving[ownerID] {
		return domain.ErrSaveInProgress
	}
	if err := c.Cancel(confirm); err != nil {
		return err
	}
	delete(s.sessions, ownerID)
	return nil
}
