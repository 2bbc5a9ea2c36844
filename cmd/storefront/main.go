// cmd/storefront/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/config"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/backend"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/brewflow-storefront/internal/interfaces/http"
	"github.com/your-org/brewflow-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/brewflow-storefront/internal/pkg/logger"
	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("🚀 Starting %s", cfg.App.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, redisClient, checks, cleanup := openStorage(ctx, cfg, log)
	defer cleanup()

	client := backend.NewClient(cfg, log)
	deps := handlers.NewDependencies(cfg, store, client, log)

	log.Info("✅ All systems operational!")

	server := http.NewServer(cfg, deps, redisClient, log, checks)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("✅ Server shutdown completed")
}

// openStorage connects the configured visitor state driver
func openStorage(ctx context.Context, cfg *config.Config, log *logrus.Logger) (persistence.Store, *goredis.Client, map[string]http.HealthCheck, func()) {
	checks := map[string]http.HealthCheck{}

	switch cfg.Storage.Driver {
	case "redis":
		redisClient, err := redis.NewConnection(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		checks["redis"] = func(context.Context) error { return redisClient.Health() }

		store := redis.NewStore(redisClient.GetClient(), cfg.Storage.KeyPrefix, cfg.Storage.TTL)
		return store, redisClient.GetClient(), checks, func() {
			if err := redisClient.Close(); err != nil {
				log.WithError(err).Warn("Failed to close Redis connection")
			}
		}

	case "postgres":
		db, err := postgres.NewConnection(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.Health(); err != nil {
			log.Fatalf("Database health check failed: %v", err)
		}
		checks["database"] = func(context.Context) error { return db.Health() }

		migration := postgres.NewMigration(db.GetDB(), log)
		if err := migration.RunAutoMigrations(); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			log.WithError(err).Warn("Index creation failed")
		}
		if cfg.IsDevelopment() {
			if err := migration.GetTableInfo(); err != nil {
				log.WithError(err).Warn("Failed to read table info")
			}
		}
		if cfg.Storage.TTL > 0 {
			go purgeExpired(ctx, migration, cfg.Storage.TTL, log)
		}

		store := postgres.NewStore(db.GetDB(), cfg.Storage.KeyPrefix, cfg.Storage.TTL)
		return store, nil, checks, func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("Failed to close database connection")
			}
		}

	default:
		log.Warn("Visitor state is kept in memory and lost on restart")
		return persistence.NewMemoryStore(), nil, checks, func() {}
	}
}

// purgeExpired removes lapsed visitor state once per TTL
func purgeExpired(ctx context.Context, migration *postgres.Migration, every time.Duration, log *logrus.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := migration.PurgeExpired()
			if err != nil {
				log.WithError(err).Warn("Failed to purge expired visitor state")
				continue
			}
			if n > 0 {
				log.WithField("rows", n).Info("Purged expired visitor state")
			}
		}
	}
}
