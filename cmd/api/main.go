package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/templeatlas/media-pipeline-go/internal/cache"
	"github.com/templeatlas/media-pipeline-go/internal/config"
	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/handler"
	"github.com/templeatlas/media-pipeline-go/internal/handler/api"
	"github.com/templeatlas/media-pipeline-go/internal/logger"
	"github.com/templeatlas/media-pipeline-go/internal/optimiser"
	"github.com/templeatlas/media-pipeline-go/internal/port"
	"github.com/templeatlas/media-pipeline-go/internal/renderer"
	"github.com/templeatlas/media-pipeline-go/internal/repository/mariadb"
	"github.com/templeatlas/media-pipeline-go/internal/storage"
	mediaSvc "github.com/templeatlas/media-pipeline-go/internal/usecase/media"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	database := initDb(ctx, cfg)

	strg := initStorage(ctx, cfg)

	mediaRepo := mariadb.NewMediaRepository(database.DB)
	// The API never enqueues tasks itself; bucket events drive the worker.
	// Redis is only used for the details cache here.
	var ca port.Cache
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
		logger.Info(ctx, "✅  Redis cache enabled")
	} else {
		ca = cache.NewNoop()
		logger.Warn(ctx, "⚠️  Redis not configured, caching is disabled")
	}

	// The client-side normalisation pass: WebP, capped dimensions, soft size
	// target reached by stepping quality down.
	opt := optimiser.NewOptimiser(optimiser.Config{
		Quality:      82,
		MaxDimension: 1920,
		TargetBytes:  1 << 20,
	}, optimiser.NewWebPEncoder(), optimiser.NewPDFValidator())

	limiter := mediaSvc.NewRateLimiter(mediaRepo, cfg.RateLimitCeiling, cfg.RateLimitWindow)

	r := initRouter(ctx)

	submitSvc := mediaSvc.NewSubmitter(mediaRepo, strg, opt, limiter, db.NewUUID, mediaSvc.SubmitterConfig{
		MaxImageBytes:    cfg.MaxImageBytes,
		MaxDocumentBytes: cfg.MaxDocumentBytes,
	})
	r.With(api.WithActorAuth(cfg.JWTSecret)).
		Post("/medias", api.SubmitMediaHandler(submitSvc, cfg.Folders))

	getMediaSvc := mediaSvc.NewMediaGetter(mediaRepo)
	rendererSvc := renderer.NewHTTPRenderer(ca)
	r.With(api.WithMediaID()).
		Get("/medias/{id}", api.GetMediaHandler(rendererSvc, getMediaSvc))

	listenRouter(ctx, r, cfg, database)
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	return database
}

func initRouter(ctx context.Context) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.NotFound(handler.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
	client, err := storage.NewClient(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	strg := storage.NewStorage(client, cfg.MediaBucket, cfg.PublicBaseURL)
	if err := strg.EnsureBucket(ctx); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.MediaBucket, err)
		os.Exit(1)
	}

	return strg
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
