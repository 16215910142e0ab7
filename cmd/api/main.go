package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohamedkhairy/session-analytics/internal/api"
	"github.com/mohamedkhairy/session-analytics/internal/config"
	"github.com/mohamedkhairy/session-analytics/internal/data"
	"github.com/mohamedkhairy/session-analytics/internal/engine"
	"github.com/mohamedkhairy/session-analytics/internal/sessions"
	"github.com/mohamedkhairy/session-analytics/internal/storage"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting session analytics API",
		logger.Int("port", cfg.API.Port),
		logger.String("timezone", cfg.Engine.Timezone),
		logger.String("data_dir", cfg.Data.Dir),
	)

	loc, err := sessions.LoadZone(cfg.Engine.Timezone)
	if err != nil {
		logger.Fatal("Failed to load exchange timezone",
			logger.ErrorField(err),
		)
	}

	sched := sessions.NewSchedule(loc)
	cache := engine.NewRecordCache()
	eng := engine.New(sched, cache, engine.Options{
		OpeningRangeMinutes: cfg.Engine.OpeningRangeMinutes,
		DefaultBucketMin:    cfg.Engine.DefaultBucketMin,
		PercentileBands:     cfg.Engine.PercentileBands,
	})

	loader := data.NewFileLoader(cfg.Data, loc)

	// Boundary cache is optional: fall back to engine-only caching when
	// Redis is unreachable.
	var boundary storage.BoundaryCache
	if redisCache, err := storage.NewRedisBoundaryCache(cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, serving without boundary cache",
			logger.ErrorField(err),
		)
	} else {
		boundary = redisCache
		defer redisCache.Close()
	}

	handler := api.NewSessionHandler(loader, eng, cache, boundary)

	// Set up router
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/instruments/{instrument}/sessions", handler.GetSessions).Methods("GET")
	v1.HandleFunc("/instruments/{instrument}/filter-days", handler.FilterDays).Methods("POST")
	v1.HandleFunc("/instruments/{instrument}/composite", handler.CompositePath).Methods("POST")
	v1.HandleFunc("/cache", handler.ClearCache).Methods("DELETE")
	v1.HandleFunc("/cache/{instrument}", handler.ClearCache).Methods("DELETE")

	// Health check endpoints
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	router.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
	})

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Apply middleware
	middlewares := api.ChainMiddleware(
		api.CORSMiddleware(),
		api.RequestIDMiddleware(),
		api.LoggingMiddleware(),
		api.RecoveryMiddleware(),
		api.AuthMiddleware(cfg.API.JWTSecret),
		api.RateLimitMiddleware(cfg.API.RateLimitRPS),
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: middlewares(router),
	}

	go func() {
		logger.Info("Starting HTTP server",
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server",
				logger.ErrorField(err),
			)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down session analytics API")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down HTTP server",
			logger.ErrorField(err),
		)
	}

	logger.Info("Session analytics API stopped")
}
