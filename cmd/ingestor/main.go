// Package main wires together the job ingestion service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/jobpulse/ingestor/internal/api"
	"github.com/jobpulse/ingestor/internal/clock/system"
	"github.com/jobpulse/ingestor/internal/config"
	"github.com/jobpulse/ingestor/internal/fingerprint"
	"github.com/jobpulse/ingestor/internal/id/uuid"
	"github.com/jobpulse/ingestor/internal/ingest"
	"github.com/jobpulse/ingestor/internal/logging"
	"github.com/jobpulse/ingestor/internal/metrics"
	"github.com/jobpulse/ingestor/internal/normalize"
	"github.com/jobpulse/ingestor/internal/orchestrator"
	memorypublisher "github.com/jobpulse/ingestor/internal/publisher/memory"
	pubsubpublisher "github.com/jobpulse/ingestor/internal/publisher/pubsub"
	"github.com/jobpulse/ingestor/internal/runlock"
	"github.com/jobpulse/ingestor/internal/runner"
	"github.com/jobpulse/ingestor/internal/scheduler"
	gcssnapshot "github.com/jobpulse/ingestor/internal/snapshot/gcs"
	localsnapshot "github.com/jobpulse/ingestor/internal/snapshot/local"
	"github.com/jobpulse/ingestor/internal/source"
	memorystore "github.com/jobpulse/ingestor/internal/store/memory"
	postgresstore "github.com/jobpulse/ingestor/internal/store/postgres"
	"github.com/jobpulse/ingestor/internal/trigger"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	store, categories, cleanupDB, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer cleanupDB()

	publisher, cleanupPub, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("publisher init failed", zap.Error(err))
	}
	defer cleanupPub()

	snapshots, err := buildSnapshots(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("snapshot store init failed", zap.Error(err))
	}

	lock, cleanupLock, err := buildRunLock(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("run lock init failed", zap.Error(err))
	}
	defer cleanupLock()

	clock := system.New()
	idGen := uuid.New()
	hasher := fingerprint.New()
	normalizer := normalize.New(categories, hasher)
	gateway := ingest.NewGateway(store, clock, publisher, cfg.PubSub.TopicName, logger)

	run := runner.New(normalizer, gateway, snapshots, clock, runner.Config{
		MaxFailureReasons: cfg.Crawler.MaxFailureReasons,
		SnapshotPrefix:    cfg.Snapshot.Prefix,
	}, logger)

	sources := source.BuildAll(cfg.Sources, cfg.Crawler.UserAgent, cfg.FetchTimeout())
	if len(sources) == 0 {
		logger.Warn("no sources enabled")
	}

	orch := orchestrator.New(run, sources, cfg.Crawler.Concurrency, idGen, clock, logger)
	trg := trigger.New(orch, lock, cfg.LockTTL(), logger)

	sched := scheduler.New(trg, scheduler.Config{
		Spec:       cfg.Schedule.Spec,
		RunOnStart: cfg.Schedule.RunOnStart,
	}, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("scheduler start failed", zap.Error(err))
	}
	defer sched.Stop()

	server := api.NewServer(trg, api.Config{Secret: cfg.Auth.Secret}, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
	logger.Info("ingestor stopped")
}

// buildStores selects Postgres when a DSN is configured, otherwise the
// in-memory store for development.
func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (ingest.PostingStore, ingest.CategoryLookup, func(), error) {
	if cfg.DB.DSN == "" {
		logger.Warn("no database configured, using in-memory store")
		lookup := memorystore.NewCategoryLookup(memorystore.DefaultCategories())
		return memorystore.NewPostingStore(), lookup, func() {}, nil
	}

	pool, err := postgresstore.NewPool(ctx, postgresstore.PoolConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	store, err := postgresstore.NewPostingStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	lookup, err := postgresstore.NewCategoryLookup(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("load categories: %w", err)
	}
	return store, lookup, pool.Close, nil
}

func buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (ingest.Publisher, func(), error) {
	if cfg.PubSub.ProjectID == "" {
		logger.Warn("no pubsub project configured, using in-memory publisher")
		return memorypublisher.New(), func() {}, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub client: %w", err)
	}
	pub, err := pubsubpublisher.New(client)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	return pub, cleanup, nil
}

func buildSnapshots(ctx context.Context, cfg config.Config, logger *zap.Logger) (ingest.SnapshotStore, error) {
	switch cfg.Snapshot.Provider {
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		return gcssnapshot.New(client, gcssnapshot.Config{Bucket: cfg.Snapshot.GCSBucket})
	case "local":
		return localsnapshot.New(localsnapshot.Config{BaseDir: cfg.Snapshot.LocalDir})
	case "noop", "":
		logger.Info("snapshot archiving disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown snapshot provider %q", cfg.Snapshot.Provider)
	}
}

func buildRunLock(ctx context.Context, cfg config.Config, logger *zap.Logger) (ingest.RunLock, func(), error) {
	if cfg.Redis.URL == "" {
		logger.Info("no redis configured, run lock disabled")
		return runlock.NopLock{}, func() {}, nil
	}
	client, err := runlock.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	token, err := uuid.New().NewID()
	if err != nil {
		return nil, nil, fmt.Errorf("lock token: %w", err)
	}
	lock := runlock.NewRedisLock(client, cfg.Redis.LockKey, token)
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}
	return lock, cleanup, nil
}
