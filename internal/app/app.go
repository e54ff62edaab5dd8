package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	pb "github.com/godilite/caseops/api/v1"
	"github.com/godilite/caseops/internal/config"
	handler "github.com/godilite/caseops/internal/grpc"
	"github.com/godilite/caseops/internal/service"
	"github.com/godilite/caseops/pkg/cache"
	grpcsrv "github.com/godilite/caseops/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	source     *Source
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
}

// Option adjusts how the app is assembled.
type Option func(*appOptions)

type appOptions struct {
	serverOpts []grpcsrv.Option
}

// WithServerOptions appends options to the gRPC server builder.
func WithServerOptions(opts ...grpcsrv.Option) Option {
	return func(o *appOptions) {
		o.serverOpts = append(o.serverOpts, opts...)
	}
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	source, err := OpenSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{logger: logger, source: source}

	var remote service.Cacher
	if cfg.RedisAddr != "" {
		cacheClient, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			_ = source.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
		a.cache = cacheClient
		remote = cacheClient
	}

	datasets := service.NewDatasetCache(remote, cfg.DatasetCacheTTL, logger)
	dashboard := service.NewDashboardService(source, datasets, cfg.Thresholds, logger)
	grpcHandlers := handler.NewGRPCHandlers(dashboard, logger)

	if cfg.GRPCReflectionEnabled {
		logger.Warn("gRPC reflection enabled; the case dashboard service has no protobuf descriptors and can be listed but not described")
	}

	serverOpts := append([]grpcsrv.Option{
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
	}, o.serverOpts...)

	grpcServer, err := grpcsrv.New(serverOpts...)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(pb.CaseDashboard_ServiceName, func(s grpc.ServiceRegistrar) {
		pb.RegisterCaseDashboardServer(s, grpcHandlers)
	})
	a.grpcServer = grpcServer

	// Warm the dataset so a bad source shows up at startup rather than on the
	// first request. Failures are not fatal: the file may appear later.
	if _, err := datasets.GetOrLoad(ctx, source); err != nil {
		logger.Warn("initial dataset load failed", zap.Error(err))
	}

	return a, nil
}

// Start serves in the background.
func (a *App) Start() {
	a.logger.Info("application starting")
	a.grpcServer.Start()
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return a.Shutdown()
}

// Shutdown stops the server and releases the source and cache.
func (a *App) Shutdown() error {
	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.grpcServer.Shutdown(ctx)
	if err != nil {
		a.logger.Warn("shutdown completed but deadline exceeded", zap.Error(err))
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	a.closeResources()
	_ = a.logger.Sync()
	return err
}

func (a *App) closeResources() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.source.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}
