package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/structpb"
	"go.uber.org/zap"

	"github.com/simaogato/assetflow-backend/internal/adapter/presenter"
	"github.com/simaogato/assetflow-backend/internal/auth"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/logger"
	"github.com/simaogato/assetflow-backend/internal/usecase/dashboard"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
	"github.com/simaogato/assetflow-backend/internal/usecase/portfolio"
	"github.com/simaogato/assetflow-backend/internal/usecase/stocktake"
)

// Server implements the AssetService gRPC server
type Server struct {
	PortfolioService *portfolio.PortfolioService
	DashboardService *dashboard.DashboardService
	HistoryService   *history.HistoryService
	StockTakeService *stocktake.StockTakeService
	Now              func() time.Time
}

var _ AssetServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	portfolioService *portfolio.PortfolioService,
	dashboardService *dashboard.DashboardService,
	historyService *history.HistoryService,
	stockTakeService *stocktake.StockTakeService,
) *Server {
	return &Server{
		PortfolioService: portfolioService,
		DashboardService: dashboardService,
		HistoryService:   historyService,
		StockTakeService: stockTakeService,
		Now:              time.Now,
	}
}

// NewGRPCServer builds a grpc.Server with logging and auth interceptors and registers
// the asset service, the health service and reflection
func NewGRPCServer(srv *Server, verifier *auth.Verifier, log *zap.SugaredLogger) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(log),
			AuthInterceptor(verifier),
		),
	)

	RegisterAssetServiceServer(s, srv)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(s)

	return s, hs
}

// fail logs computation errors, which indicate an invariant violation, and maps err to a status
func fail(ctx context.Context, err error) error {
	var ce *domain.ComputationError
	if errors.As(err, &ce) {
		logger.FromContext(ctx).Errorw("computation aborted", "error", err)
	}
	return mapError(err)
}

func owner(ctx context.Context) (uuid.UUID, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return uuid.Nil, mapError(err)
	}
	return ownerID, nil
}

// ListHoldings handles the ListHoldings RPC
func (s *Server) ListHoldings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.PortfolioService.LoadHoldings(ctx, ownerID)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.Snapshot(snapshot))
}

// AddHolding handles the AddHolding RPC
func (s *Server) AddHolding(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	input, err := holdingInput(req)
	if err != nil {
		return nil, err
	}

	holding, snapshot, err := s.PortfolioService.AddHolding(ctx, ownerID, input)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.M{
		"holding":  presenter.Holding(holding),
		"snapshot": presenter.Snapshot(snapshot),
	})
}

// UpdateHolding handles the UpdateHolding RPC
func (s *Server) UpdateHolding(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	id, err := uuidField(req, "id")
	if err != nil {
		return nil, err
	}

	input, err := holdingInput(req)
	if err != nil {
		return nil, err
	}

	holding, snapshot, err := s.PortfolioService.UpdateHolding(ctx, ownerID, id, input)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.M{
		"holding":  presenter.Holding(holding),
		"snapshot": presenter.Snapshot(snapshot),
	})
}

// DeleteHolding handles the DeleteHolding RPC
func (s *Server) DeleteHolding(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	id, err := uuidField(req, "id")
	if err != nil {
		return nil, err
	}

	snapshot, err := s.PortfolioService.DeleteHolding(ctx, ownerID, id)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.M{"snapshot": presenter.Snapshot(snapshot)})
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.DashboardService.GetSummary(ctx, ownerID)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.Summary(summary))
}

// Project handles the Project RPC. It is pure and writes nothing.
func (s *Server) Project(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	principal, err := requiredDecimal(req, "principal")
	if err != nil {
		return nil, err
	}

	rate, err := decimalField(req, "annual_rate_percent")
	if err != nil {
		return nil, err
	}
	years, err := intField(req, "years")
	if err != nil {
		return nil, err
	}

	result, err := s.DashboardService.Project(principal, rate, years)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.Projection(result))
}

// Simulate handles the Simulate RPC
func (s *Server) Simulate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	rate, err := decimalField(req, "annual_rate_percent")
	if err != nil {
		return nil, err
	}
	years, err := intField(req, "years")
	if err != nil {
		return nil, err
	}

	record, err := s.DashboardService.Simulate(ctx, ownerID, rate, years)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.Record(record))
}

// ListHistory handles the ListHistory RPC
func (s *Server) ListHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.HistoryService.List(ctx, ownerID)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.HistoryGroups(records, s.Now()))
}

// GetHistory handles the GetHistory RPC
func (s *Server) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	id, err := uuidField(req, "id")
	if err != nil {
		return nil, err
	}

	record, err := s.HistoryService.Get(ctx, ownerID, id)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.Record(record))
}

// DeleteHistory handles the DeleteHistory RPC
func (s *Server) DeleteHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	id, err := uuidField(req, "id")
	if err != nil {
		return nil, err
	}

	if err := s.HistoryService.Remove(ctx, ownerID, id); err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.M{"deleted": id.String()})
}

// BeginStockTake handles the BeginStockTake RPC
func (s *Server) BeginStockTake(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	years := 0
	if y, err := intField(req, "years"); err != nil {
		return nil, err
	} else if y != nil {
		years = *y
	}

	c, err := s.StockTakeService.Begin(ctx, ownerID, years)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return s.stockTake(ctx, c)
}

// SetAdjustedAmount handles the SetAdjustedAmount RPC.
// amount is raw user text; non-digits are ignored and empty means 0.
func (s *Server) SetAdjustedAmount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	holdingID, err := uuidField(req, "holding_id")
	if err != nil {
		return nil, err
	}

	raw := stringField(req, "amount")
	if v, ok := field(req, "amount"); ok {
		if n, isNumber := v.GetKind().(*structpb.Value_NumberValue); isNumber {
			raw = stocktake.AmountText(n.NumberValue)
		}
	}

	c, err := s.StockTakeService.Session(ownerID)
	if err != nil {
		return nil, fail(ctx, err)
	}

	line, err := c.SetAdjustedAmount(holdingID, raw)
	if err != nil {
		return nil, fail(ctx, err)
	}

	totals, err := c.ComputeTotals()
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.M{
		"line":   presenter.Line(line),
		"totals": presenter.Totals(totals),
		"dirty":  c.Dirty(),
	})
}

// GetStockTake handles the GetStockTake RPC
func (s *Server) GetStockTake(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.StockTakeService.Session(ownerID)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return s.stockTake(ctx, c)
}

// SaveStockTake handles the SaveStockTake RPC
func (s *Server) SaveStockTake(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.StockTakeService.Save(ctx, ownerID)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.SaveResult(result))
}

// CancelStockTake handles the CancelStockTake RPC
func (s *Server) CancelStockTake(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	confirm := false
	if v, ok := field(req, "confirm"); ok {
		confirm = v.GetBoolValue()
	}

	if err := s.StockTakeService.Cancel(ownerID, confirm); err != nil {
		return nil, fail(ctx, err)
	}

	return toStruct(presenter.M{"state": stocktake.StateIdle.String()})
}

func (s *Server) stockTake(ctx context.Context, c *stocktake.Coordinator) (*structpb.Struct, error) {
	body, err := presenter.StockTake(c)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return toStruct(body)
}
