// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/amoralabs/amora-backend/internal/common/database"
	"github.com/amoralabs/amora-backend/internal/config"
	"github.com/amoralabs/amora-backend/internal/discovery"
	"github.com/amoralabs/amora-backend/internal/logger"
)

var startTime = time.Now()

func main() {
	// .env is optional; deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found (%v), using environment variables", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration validation failed: %v", err)
	}

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	defer zlog.Sync()

	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer db.Close()
	zlog.Info("connected to postgres")

	// Redis is optional: without it cooldowns live in memory and
	// results are not cached across restarts.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			zlog.Warn("redis unavailable, falling back to in-memory stores", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			zlog.Info("connected to redis")
		}
	}

	var (
		cooldown discovery.CooldownStore
		cache    discovery.ResultCache
		sweeper  *discovery.MemoryCooldownStore
	)
	if redisClient != nil {
		cooldown = discovery.NewRedisCooldownStore(redisClient)
		cache = discovery.NewRedisResultCache(redisClient)
	} else {
		sweeper = discovery.NewMemoryCooldownStore()
		cooldown = sweeper
		cache = discovery.NewNoopResultCache()
	}

	advisor, err := discovery.NewAdvisor()
	if err != nil {
		zlog.Fatal("loading preset catalog failed", zap.Error(err))
	}

	repo := discovery.NewPostgresRepository(db)
	engine := discovery.NewOrchestrator(discovery.NewScorer(), zlog, cfg.DiscoveryWorkers)
	hub := discovery.NewHub(zlog)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go hub.Run(rootCtx)

	svc := discovery.NewService(repo, engine, advisor, cooldown, cache, hub, discovery.ServiceConfig{
		CandidatePoolSize: cfg.CandidatePoolSize,
		DefaultLimit:      cfg.DefaultMatchLimit,
		MaxLimit:          cfg.MaxMatchLimit,
		Cooldown:          cfg.DiscoveryCooldown,
		CacheTTL:          cfg.ResultCacheTTL,
		MaxDistanceKm:     cfg.MaxDistanceKm,
		MinAge:            cfg.MinAge,
		MaxAge:            cfg.MaxAge,
		ActiveWindow:      cfg.ActiveWindow,
		DigestBatchSize:   cfg.DigestBatchSize,
		DigestActiveDays:  cfg.DigestActiveDays,
	}, zlog)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	discovery.RegisterRoutes(router, discovery.NewHandler(svc, zlog), hub)

	digestSpec := ""
	if cfg.EnableDailyDigest {
		digestSpec = cfg.DigestSchedule
	}
	var scheduler *discovery.Scheduler
	if digestSpec != "" || sweeper != nil {
		scheduler = discovery.NewScheduler(svc, sweeper, digestSpec, zlog)
		if err := scheduler.Start(rootCtx); err != nil {
			zlog.Fatal("starting scheduler failed", zap.Error(err))
		}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		zlog.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutdown signal received")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	stop()

	zlog.Info("server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	})
}
