package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/config"
	"github.com/norsecards/ragnarok-engine/internal/game"
	"github.com/norsecards/ragnarok-engine/internal/presentation"
	"github.com/norsecards/ragnarok-engine/internal/server"
	"github.com/norsecards/ragnarok-engine/internal/telemetry"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var version = "dev" // set via ldflags during build

func main() {
	config.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	loader, err := config.NewLoader(afero.NewOsFs(), pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, level, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting ragnarok engine",
		zap.String("version", version),
		zap.String("config", loader.File()),
	)

	loader.Watch(func(next *config.Config, err error) {
		if err != nil {
			logger.Warn("configuration reload rejected", zap.Error(err))
			return
		}
		level.SetLevel(parseLevel(next.Logging.Level))
		logger.Info("configuration reloaded", zap.String("log_level", next.Logging.Level))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("ragnarok engine stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, logger.Named("telemetry"))
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("trace flush failed", zap.Error(err))
		}
	}()

	cat, closeCatalog, err := openCatalog(ctx, cfg, logger.Named("catalog"))
	if err != nil {
		return err
	}
	defer closeCatalog()

	engine := game.NewEngine(logger.Named("engine"), cat, game.Config{
		Seed:           cfg.Engine.Seed,
		StartingHealth: cfg.Engine.StartingHealth,
		StartingHand:   cfg.Engine.StartingHand,
		StepDuration:   cfg.Presentation.StepDuration,
		ScriptBudget:   cfg.Engine.ScriptBudget,
		Autoplay:       true,
	})
	defer engine.Close()

	grpcServer, err := server.New(cfg.Server.GRPCAddress, engine, logger.Named("grpc"))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+presentation.FeedPath+"{id}", presentation.NewFeed(engine, cfg.Presentation.MaxEventsPerSecond, logger.Named("feed")))
	httpServer := &http.Server{
		Addr:              cfg.Server.WebSocketAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Serve(gctx)
	})
	g.Go(func() error {
		logger.Info("starting websocket server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve websocket: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	logger.Info("ragnarok engine initialized",
		zap.String("grpc_address", grpcServer.Addr()),
		zap.String("websocket_address", cfg.Server.WebSocketAddress),
		zap.String("catalog", cfg.Catalog.Source),
		zap.Int("cards", cat.Len()),
	)
	return g.Wait()
}

// openCatalog loads card definitions from the configured source. The
// returned func releases the database pool, if any.
func openCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*catalog.Catalog, func(), error) {
	noop := func() {}
	var source catalog.Source
	closeFn := noop

	switch cfg.Catalog.Source {
	case config.CatalogFile:
		source = catalog.NewFileSource(cfg.Catalog.Path)
	case config.CatalogPostgres:
		if cfg.Database.Migrate {
			if err := migrate(cfg.Database.URL, logger); err != nil {
				return nil, noop, err
			}
		}
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to database: %w", err)
		}
		stats := pool.Stat()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		source = catalog.PostgresSource{Pool: pool}
		closeFn = pool.Close
	}

	cat := catalog.New(source, logger)
	if err := cat.Load(ctx); err != nil {
		closeFn()
		return nil, noop, fmt.Errorf("load catalog: %w", err)
	}
	return cat, closeFn, nil
}

func migrate(databaseURL string, logger *zap.Logger) error {
	m, err := catalog.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		return err
	}
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("catalog migrations applied", zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}

// initLogger initializes the zap logger based on configuration. The
// returned level can be changed while the logger is in use.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	return logger, level, err
}

func parseLevel(name string) zapcore.Level {
	switch name {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
