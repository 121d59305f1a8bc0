package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"

	"github.com/templeatlas/media-pipeline-go/internal/cache"
	"github.com/templeatlas/media-pipeline-go/internal/config"
	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/event"
	workerHandler "github.com/templeatlas/media-pipeline-go/internal/handler/worker"
	"github.com/templeatlas/media-pipeline-go/internal/logger"
	"github.com/templeatlas/media-pipeline-go/internal/optimiser"
	"github.com/templeatlas/media-pipeline-go/internal/repository/mariadb"
	"github.com/templeatlas/media-pipeline-go/internal/storage"
	"github.com/templeatlas/media-pipeline-go/internal/task"
	mediaSvc "github.com/templeatlas/media-pipeline-go/internal/usecase/media"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}
	if cfg.RedisAddr == "" {
		logger.Error(ctx, "⚠️  REDIS_ADDR must be set to run the worker")
		os.Exit(1)
	}

	logger.Init()

	database := initDb(cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warnf(ctx, "DB close error: %v", err)
		}
	}()

	client := initMinioClient(cfg)
	strg := storage.NewStorage(client, cfg.MediaBucket, cfg.PublicBaseURL)
	if err := strg.EnsureBucket(ctx); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.MediaBucket, err)
		os.Exit(1)
	}

	repo := mariadb.NewMediaRepository(database.DB)
	// Variant rendering runs at fixed quality with no dimension cap of its
	// own; each variant def brings its target width.
	opt := optimiser.NewOptimiser(optimiser.Config{Quality: 80},
		optimiser.NewWebPEncoder(), optimiser.NewPDFValidator())
	dispatcher := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
	ca := cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)

	guard := mediaSvc.NewScopeGuard(cfg.Folders, mediaSvc.VariantNames(cfg.Variants))
	generateSvc := mediaSvc.NewVariantGenerator(repo, opt, strg, ca, guard, cfg.Variants)

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeGenerateVariants, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseGenerateVariantsPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.GenerateVariantsHandler(ctx, p, generateSvc)
	})

	// The bucket event stream feeds the queue; if it dies the whole process
	// exits and the orchestrator restarts it.
	listener := event.NewListener(client, cfg.MediaBucket, dispatcher)
	go func() {
		if err := listener.Run(ctx); err != nil {
			logger.Errorf(ctx, "❌  Event listener failed: %v", err)
			stop()
		}
	}()

	runWorker(ctx, mux, cfg)
}

func initDb(cfg *config.Settings) *db.Database {
	ctx := context.Background()
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	return database
}

func initMinioClient(cfg *config.Settings) *minio.Client {
	client, err := storage.NewClient(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(context.Background(), "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	return client
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, cfg *config.Settings) {
	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}, asynq.Config{Concurrency: cfg.WorkerConcurrency})

	// Run server in background
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "❌  Worker failed: %v", err)
			os.Exit(1)
		}
	}()
	logger.Info(ctx, "🚀 Worker started")

	// Wait for interrupt signal or listener failure
	<-ctx.Done()
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// Give Asynq up to 30 sec to finish tasks
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	srv.Shutdown()       // stop accepting new tasks, finish in-flight
	<-shutdownCtx.Done() // either timeout or done

	logger.Info(ctx, "✅  Worker gracefully stopped")
}
