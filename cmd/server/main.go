package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "github.com/simaogato/assetflow-backend/internal/adapter/grpc"
	"github.com/simaogato/assetflow-backend/internal/adapter/rest"
	"github.com/simaogato/assetflow-backend/internal/app"
	"github.com/simaogato/assetflow-backend/internal/config"
	"github.com/simaogato/assetflow-backend/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("ASSETFLOW_CONFIG"), "path to a YAML or JSON config file")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	defer log.Sync()
	zap.ReplaceGlobals(log.Desugar())

	// 2. Setup Database, Repositories and Services
	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	// 3. Start gRPC Server
	grpcServer, healthServer := grpcadapter.NewGRPCServer(
		grpcadapter.NewServer(a.PortfolioService, a.DashboardService, a.HistoryService, a.StockTakeService),
		a.Verifier,
		log,
	)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatalw("failed to listen", "addr", cfg.Server.GRPCAddr, "error", err)
	}

	go func() {
		log.Infow("gRPC server listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalw("failed to serve gRPC server", "error", err)
		}
	}()

	// 4. Start HTTP Server
	var httpServer *http.Server
	if cfg.Server.HTTPAddr != "" {
		if cfg.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		handler := rest.NewApiHandler(a.PortfolioService, a.DashboardService, a.HistoryService, a.StockTakeService, a.Verifier, log)
		httpServer = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			log.Infow("HTTP server listening", "addr", cfg.Server.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalw("failed to serve HTTP server", "error", err)
			}
		}()
	}

	// Graceful shutdown
	waitForShutdown(log, grpcServer, healthServer, httpServer)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log *zap.SugaredLogger, grpcServer *grpclib.Server, healthServer *health.Server, httpServer *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Infow("shutting down gracefully", "signal", sig.String())

	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Warnw("HTTP server shutdown", "error", err)
		}
		log.Info("HTTP server stopped")
	}

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")
}
