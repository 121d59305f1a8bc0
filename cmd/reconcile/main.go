package main

import (
	"context"
	"log"

	"github.com/templeatlas/media-pipeline-go/internal/config"
	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/port"
	"github.com/templeatlas/media-pipeline-go/internal/repository/mariadb"
	"github.com/templeatlas/media-pipeline-go/internal/task"
	mediaSvc "github.com/templeatlas/media-pipeline-go/internal/usecase/media"
)

// Run from cron. Re-enqueues stuck records and fails the hopeless ones.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌  Configuration error: %v", err)
	}

	database := initDb(cfg)
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("DB close error: %v", err)
		}
	}()

	dispatcher := initDispatcher(cfg)
	repo := mariadb.NewMediaRepository(database.DB)

	reconciler := mediaSvc.NewReconciler(repo, dispatcher, mediaSvc.ReconcilerConfig{
		RetriggerAge: cfg.ReconcileRetriggerAge,
		GiveupAge:    cfg.ReconcileGiveupAge,
	})
	if err := reconciler.ReconcileStuck(context.Background()); err != nil {
		log.Fatalf("❌  Reconciliation failed: %v", err)
	}
	log.Println("✅  Reconciliation completed")
}

func initDb(cfg *config.Settings) *db.Database {
	log.Println("initialising database...")
	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		log.Fatalf("❌  Failed to connect to db: %v", err)
	}
	return database
}

func initDispatcher(cfg *config.Settings) port.TaskDispatcher {
	if cfg.RedisAddr == "" {
		log.Fatalf("❌  Redis not configured: this command requires a running Redis instance")
	}
	return task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
}
