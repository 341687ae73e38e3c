package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "github.com/shannong20/Evalytics-sub000/api/v1"
	"github.com/shannong20/Evalytics-sub000/internal/analytics"
	"github.com/shannong20/Evalytics-sub000/internal/config"
	handler "github.com/shannong20/Evalytics-sub000/internal/grpc"
	"github.com/shannong20/Evalytics-sub000/internal/httpapi"
	"github.com/shannong20/Evalytics-sub000/internal/lexicon"
	"github.com/shannong20/Evalytics-sub000/internal/repository"
	"github.com/shannong20/Evalytics-sub000/internal/service"
	"github.com/shannong20/Evalytics-sub000/internal/tracing"
	"github.com/shannong20/Evalytics-sub000/pkg/cache"
	dbbuilder "github.com/shannong20/Evalytics-sub000/pkg/database"
	grpcsrv "github.com/shannong20/Evalytics-sub000/pkg/grpc/server"
)

const serviceName = "evalytics"

type App struct {
	logger       *zap.Logger
	dbPool       *sqlx.DB
	cache        handler.Cacher
	grpcServer   *grpcsrv.Server
	httpServer   *http.Server
	httpListener net.Listener
	shutdownOTel tracing.ShutdownFunc
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shutdownOTel, err := tracing.InitTracerProvider(ctx, serviceName, cfg.OTLPEndpoint, logger)
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		_ = shutdownOTel(ctx)
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	a := &App{logger: logger, dbPool: dbPool, shutdownOTel: shutdownOTel}
	if err := a.init(ctx, cfg); err != nil {
		a.abort(ctx)
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context, cfg *config.Config) error {
	results, err := repository.Migrate(ctx, a.dbPool.DB)
	if err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	for _, r := range results {
		a.logger.Info("applied migration",
			zap.Int64("version", r.Source.Version),
			zap.Duration("duration", r.Duration))
	}

	caps, err := repository.ProbeCapabilities(ctx, a.dbPool)
	if err != nil {
		return fmt.Errorf("schema probe failed: %w", err)
	}
	a.logger.Info("schema capabilities", zap.Bool("user_department", caps.UserDepartment))

	lex, err := loadLexicon(cfg.LexiconPath)
	if err != nil {
		return err
	}

	evaluationRepo := repository.NewEvaluationRepository(a.dbPool, caps)
	analyticsService := service.NewAnalyticsService(evaluationRepo, analytics.New(lex), a.logger)

	if cfg.CacheEnabled {
		cacheClient, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			a.logger.Warn("cache unavailable, serving reports uncached",
				zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			a.cache = cacheClient
			a.logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
		}
	}

	grpcHandlers := handler.NewGRPCHandlers(analyticsService, a.cache, a.logger, cfg.CacheTTL,
		handler.WithDefaultMinResponses(cfg.MinResponses))

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(a.logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithMetrics(true),
	)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}
	a.grpcServer = grpcServer

	grpcServer.RegisterServiceWithHealth(pb.InstructorAnalytics_ServiceName, func(s *grpc.Server) {
		pb.RegisterInstructorAnalyticsServer(s, grpcHandlers)
	})

	if cfg.HTTPAddr != "" {
		lis, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.HTTPAddr, err)
		}
		a.httpListener = lis
		a.httpServer = &http.Server{
			Handler: httpapi.NewHandler(analyticsService, a.logger.Named("http"),
				httpapi.WithDefaultMinResponses(cfg.MinResponses)).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return nil
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default()
	}
	lex, err := lexicon.Load(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon load failed: %w", err)
	}
	return lex, nil
}

// Start launches the gRPC and HTTP servers and returns immediately.
func (a *App) Start() {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	if a.httpServer != nil {
		a.logger.Info("HTTP server starting", zap.String("addr", a.httpListener.Addr().String()))
		go func() {
			if err := a.httpServer.Serve(a.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("HTTP server failed", zap.Error(err))
			}
		}()
	}
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.Shutdown(ctx)
	_ = a.logger.Sync()
	return err
}

// Shutdown stops the servers and releases the cache, database and tracer.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("grpc shutdown: %w", err))
	}
	if err := a.shutdownOTel(ctx); err != nil {
		a.logger.Warn("tracer shutdown error", zap.Error(err))
	}
	a.close()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.logger.Info("graceful shutdown completed successfully")
	return nil
}

// abort releases everything init acquired before it failed.
func (a *App) abort(ctx context.Context) {
	if a.httpListener != nil {
		if err := a.httpListener.Close(); err != nil {
			a.logger.Warn("http listener close error", zap.Error(err))
		}
	}
	if a.grpcServer != nil {
		if err := a.grpcServer.Close(); err != nil {
			a.logger.Warn("grpc listener close error", zap.Error(err))
		}
	}
	if err := a.shutdownOTel(ctx); err != nil {
		a.logger.Warn("tracer shutdown error", zap.Error(err))
	}
	a.close()
}

func (a *App) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}

// GRPCAddr returns the gRPC listening address.
func (a *App) GRPCAddr() net.Addr {
	return a.grpcServer.Addr()
}

// HTTPAddr returns the HTTP listening address, or nil when HTTP is disabled.
func (a *App) HTTPAddr() net.Addr {
	if a.httpListener == nil {
		return nil
	}
	return a.httpListener.Addr()
}
