package rest

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/simaogato/assetflow-backend/internal/auth"
	"github.com/simaogato/assetflow-backend/internal/usecase/dashboard"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
	"github.com/simaogato/assetflow-backend/internal/usecase/portfolio"
	"github.com/simaogato/assetflow-backend/internal/usecase/stocktake"
)

// ApiHandler serves the JSON API over HTTP
type ApiHandler struct {
	PortfolioService *portfolio.PortfolioService
	DashboardService *dashboard.DashboardService
	HistoryService   *history.HistoryService
	StockTakeService *stocktake.StockTakeService
	Verifier         *auth.Verifier
	Logger           *zap.SugaredLogger
	Now              func() time.Time
}

// NewApiHandler creates a new ApiHandler instance
func NewApiHandler(
	portfolioService *portfolio.PortfolioService,
	dashboardService *dashboard.DashboardService,
	historyService *history.HistoryService,
	stockTakeService *stocktake.StockTakeService,
	verifier *auth.Verifier,
	logger *zap.SugaredLogger,
) *ApiHandler {
	return &ApiHandler{
		PortfolioService: portfolioService,
		DashboardService: dashboardService,
		HistoryService:   historyService,
		StockTakeService: stockTakeService,
		Verifier:         verifier,
		Logger:           logger,
		Now:              time.Now,
	}
}

// Router builds the gin engine with every route registered
func (h *ApiHandler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig()))
	router.Use(h.logRequestMiddleware)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/", h.authMiddleware)

	api.GET("/holdings", h.listHoldings)
	api.POST("/holdings", h.addHolding)
	api.PUT("/holdings/:id", h.updateHolding)
	api.DELETE("/holdings/:id", h.deleteHolding)

	api.GET("/summary", h.getSummary)
	api.POST("/projection", h.project)
	api.POST("/simulate", h.simulate)

	api.GET("/history", h.listHistory)
	api.GET("/history/:id", h.getHistory)
	api.DELETE("/history/:id", h.deleteHistory)

	api.POST("/stocktake", h.beginStockTake)
	api.GET("/stocktake", h.getStockTake)
	api.PUT("/stocktake/holdings/:id", h.setAdjustedAmount)
	api.POST("/stocktake/save", h.saveStockTake)
	api.POST("/stocktake/cancel", h.cancelStockTake)

	return router
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders("Authorization")
	cfg.AddExposeHeaders(RequestIDHeader)
	return cfg
}
