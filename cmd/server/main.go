package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/pemetrics-backend/internal/adapter/grpc"
	"github.com/simaogato/pemetrics-backend/internal/adapter/repository/memory"
	"github.com/simaogato/pemetrics-backend/internal/adapter/rest"
	"github.com/simaogato/pemetrics-backend/internal/config"
	"github.com/simaogato/pemetrics-backend/internal/logger"
	"github.com/simaogato/pemetrics-backend/internal/usecase/dashboard"
	"github.com/simaogato/pemetrics-backend/internal/usecase/irr"
	"github.com/simaogato/pemetrics-backend/internal/usecase/metrics"
	"github.com/simaogato/pemetrics-backend/internal/usecase/normalizer"
	"github.com/simaogato/pemetrics-backend/internal/usecase/session"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(logger.Config{Level: "info", Output: os.Stderr})
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	// 2. Initialize session state (in-memory, one session per process)
	manualRepo := memory.NewManualEntryRepository()
	sess := session.NewSession(manualRepo, normalizer.NewNormalizer(), log)

	// 3. Initialize Services (Use Cases)
	calculator := metrics.NewCalculator(cfg.AsOf)
	solver := irr.NewSolver(irr.Options{MaxIterations: cfg.IRRMaxIterations})
	dashboardService := dashboard.NewDashboardService(sess, calculator, solver, log)

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.RecoveryInterceptor(log),
			grpcadapter.LoggingInterceptor(log),
		),
	)
	grpcadapter.RegisterMetricsServiceServer(grpcServer, grpcadapter.NewServer(sess, dashboardService))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// 5. Start HTTP Server
	httpServer := rest.New(rest.Config{
		Addr:      cfg.HTTPAddr,
		Log:       log,
		Dashboard: dashboardService,
	})

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve HTTP server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(log, cfg, grpcServer, httpServer)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down both servers
func waitForShutdown(log zerolog.Logger, cfg *config.Config, grpcServer *grpclib.Server, httpServer *rest.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		grpcServer.Stop()
	}
	log.Info().Msg("Servers stopped")
}
