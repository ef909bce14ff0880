package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/scoutdeck/scoutdeck/internal/board"
	"github.com/scoutdeck/scoutdeck/internal/config"
	"github.com/scoutdeck/scoutdeck/internal/database"
	server "github.com/scoutdeck/scoutdeck/internal/http"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/prefs"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/scoutdeck/scoutdeck/internal/upload"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown log level, staying on info", "level", cfg.LogLevel)
	}

	db, dbTeardown, err := database.InitDB(cfg.DBPath, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	prefsStore := prefs.New(db)
	usage := metrics.NewUsageStore(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	client := statsapi.NewClient(cfg.StatsAPIURL, statsapi.WithTimeout(cfg.Client.Timeout))
	cache := query.New(metricsSvc, query.WithTTLs(cfg.Cache.TTLs))
	boards := board.NewRegistry(client, cache, metricsSvc, usage, cfg.Search.Debounce)
	uploader := upload.New(client, cache, prefsStore, usage, metricsSvc)

	s := server.NewServer(
		client,
		cache,
		boards,
		prefsStore,
		uploader,
		usage,
		metricsSvc,
		metricsHandler,
		cfg,
	)

	if cfg.Cache.WarmOnStart {
		go warmCache(client, cache)
	}

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port, "stats_api", cfg.StatsAPIURL)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}

// warmCache primes the views the dashboard asks for first. Failures only
// log; the gateway serves fine from a cold cache.
func warmCache(client statsapi.StatsClient, cache *query.Cache) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	listParams := statsapi.PlayerListParams{
		SortField: board.DefaultSortField,
		SortOrder: "asc",
		Page:      1,
		PerPage:   board.DefaultPerPage,
	}
	topParams := statsapi.TopParams{Period: statsapi.PeriodAllTime, Limit: 10}

	err := cache.Warm(ctx,
		query.WarmSpec{Key: query.TournamentsKey(), Fetch: func(ctx context.Context) (any, error) {
			return client.ListTournaments(ctx)
		}},
		query.WarmSpec{Key: query.PlayersKey(listParams), Fetch: func(ctx context.Context) (any, error) {
			return client.ListPlayers(ctx, listParams)
		}},
		query.WarmSpec{Key: query.TopKey(topParams), Fetch: func(ctx context.Context) (any, error) {
			return client.TopPerformers(ctx, topParams)
		}},
	)
	if err != nil {
		log.Warn("Cache warm-up incomplete", "error", err)
	}
	log.Info("Cache warm-up finished", "entries", cache.Len())
}
