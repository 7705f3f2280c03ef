package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/capsulelab/tarkov-capsule/internal/core/config"
	"github.com/capsulelab/tarkov-capsule/internal/core/storage/postgres"
	"github.com/capsulelab/tarkov-capsule/internal/feed"
	"github.com/capsulelab/tarkov-capsule/internal/ingestion"
	"github.com/capsulelab/tarkov-capsule/internal/migrations"
	"github.com/capsulelab/tarkov-capsule/internal/query"
	"github.com/capsulelab/tarkov-capsule/internal/server"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "capsule.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Feed Client and Ingestion
	feedClient := feed.NewClient(cfg.Feed.URL, cfg.Feed.EffectiveTimeout())
	ingestionSvc := ingestion.NewService(feedClient, dbAdapter)

	// 4. Initialize Query API
	querySvc := query.NewService(dbAdapter)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	querySvc.RegisterRoutes(srv.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Schedule Ingestion
	scheduler := cron.New()
	if cfg.Ingestion.Enabled {
		if _, err := scheduler.AddFunc(cfg.Ingestion.Schedule, func() {
			ingestionSvc.Run(ctx)
		}); err != nil {
			slog.Error("Invalid ingestion schedule", "schedule", cfg.Ingestion.Schedule, "error", err)
			os.Exit(1)
		}
		slog.Info("Ingestion scheduled", "schedule", cfg.Ingestion.Schedule)

		if cfg.Ingestion.RunOnStart {
			go ingestionSvc.Run(ctx)
		}
	} else {
		slog.Info("Scheduled ingestion disabled by config")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// 7. Start Services
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		stopCtx := scheduler.Stop()
		// Let an in-flight ingestion run finish before exiting.
		<-stopCtx.Done()
		return nil
	})

	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Service stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
