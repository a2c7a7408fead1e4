package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/hungerium/hungeriumm-sub001/internal/api"
	"github.com/hungerium/hungeriumm-sub001/internal/config"
	"github.com/hungerium/hungeriumm-sub001/internal/data"
	"github.com/hungerium/hungeriumm-sub001/internal/game"
	"github.com/hungerium/hungeriumm-sub001/internal/persist"
	"github.com/hungerium/hungeriumm-sub001/internal/render"
	"github.com/hungerium/hungeriumm-sub001/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting",
		zap.Int("tick_rate", cfg.Sim.TickRate),
		zap.Int("max_sessions", cfg.Session.MaxSessions),
		zap.String("storage", cfg.Storage.Driver))

	store, closeStore, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer closeStore()

	tables, err := data.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	log.Info("tables loaded",
		zap.Int("bosses", len(tables.Bosses)),
		zap.Int("characters", len(tables.Characters)))

	var events *game.EventLog
	if cfg.Session.EventLogPath != "" {
		events = game.NewEventLog(log.Named("events"))
		if err := events.Start(cfg.Session.EventLogPath); err != nil {
			return fmt.Errorf("start event log: %w", err)
		}
		defer events.Stop()
	}

	saver := persist.NewSaver(store, cfg.Storage, log.Named("saver"))
	metrics := api.NewMetrics()
	metrics.WatchEventLog(events)
	metrics.WatchSaver(saver)

	manager := session.NewManager(session.Options{
		Sim:      cfg.Sim,
		Session:  cfg.Session,
		Tables:   tables,
		Store:    store,
		Saver:    saver,
		Events:   events,
		Observer: metrics,
		Logger:   log.Named("session"),
	})
	if err := manager.SeedLeaderboard(ctx, 100); err != nil {
		log.Warn("leaderboard not seeded", zap.Error(err))
	}

	renderer := render.New(cfg.Render, log.Named("render"))
	server := api.NewServer(cfg.Server, cfg.RateLimit, manager, renderer, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return manager.Run(gctx) })
	if cfg.Observability.Enabled {
		debug := api.NewDebugServer(cfg.Observability, metrics, log.Named("debug"))
		g.Go(func() error { return api.ServeDebug(gctx, debug, log.Named("debug")) })
	} else {
		log.Info("debug server disabled")
	}

	// The saver outlives the manager so final checkpoints are written.
	saverCtx, stopSaver := context.WithCancel(context.Background())
	saverDone := make(chan error, 1)
	go func() { saverDone <- saver.Run(saverCtx) }()

	err = g.Wait()
	manager.CloseAll("shutdown")
	stopSaver()
	if serr := <-saverDone; serr != nil && !errors.Is(serr, context.Canceled) {
		log.Warn("saver stopped with error", zap.Error(serr))
	}

	st := saver.Stats()
	log.Info("shutdown complete",
		zap.Uint64("profiles_saved", st.Saved),
		zap.Uint64("profiles_dropped", st.Dropped))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openStore returns the profile store for the configured driver and a
// function that releases it.
func openStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (persist.Store, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		log.Info("using in-memory profile store")
		return persist.NewMemoryStore(), func() {}, nil

	case "postgres":
		db, err := persist.NewDB(ctx, cfg, log.Named("db"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("database migrations applied")
		return persist.NewProfileRepo(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
