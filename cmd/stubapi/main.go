// Command stubapi is a stand-in for the football statistics backend. It
// seeds an in-memory dataset and serves the endpoints the gateway's stats
// client consumes, so the gateway and CLI run end to end without the real
// backend. One seed always produces the same dataset, ids included.
package main

import (
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

type stubConfig struct {
	Addr    string
	Players int
	Seed    int64
	Delay   time.Duration
}

func loadConfig() stubConfig {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	cfg := stubConfig{
		Addr:    envOr("STUB_ADDR", ":9314"),
		Players: envInt("STUB_PLAYERS", 0),
		Seed:    int64(envInt("STUB_SEED", 1)),
	}
	rawDelay := envOr("STUB_DELAY", "0s")
	delay, err := time.ParseDuration(rawDelay)
	if err != nil {
		log.Fatalf("Invalid STUB_DELAY %q: %s", rawDelay, err)
	}
	cfg.Delay = delay
	return cfg
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid %s %q: %s", key, raw, err)
	}
	return n
}

func main() {
	log.Info("Starting stats backend stub...")
	cfg := loadConfig()

	rng := rand.New(rand.NewSource(cfg.Seed))
	data := seedDataset(rng, cfg.Players)
	log.Info("Seeded in-memory dataset", "players", data.size(), "tournaments", len(tournamentSeed), "seed", cfg.Seed)

	srv := &stubServer{data: data}
	router := newRouter(srv, cfg.Delay)

	log.Info("Stub backend listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("Stub backend stopped: %s", err)
	}
}

func newRouter(srv *stubServer, delay time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger)
	if delay > 0 {
		log.Info("Simulating backend latency", "delay", delay)
		r.Use(simulateLatency(delay))
	}

	r.Get("/health", srv.health)
	r.Route("/players", func(pr chi.Router) {
		pr.Get("/", srv.listPlayers)
		pr.Get("/search", srv.searchPlayers)
		pr.Get("/tracked", srv.trackedPlayers)
		pr.Get("/raw-data", srv.rawData)
		pr.Get("/{playerID}", srv.getPlayer)
		pr.Put("/{playerID}/status", srv.updateStatus)
	})
	r.Route("/tournaments", func(tr chi.Router) {
		tr.Get("/", srv.listTournaments)
		tr.Get("/{tournamentID}/stats", srv.tournamentStats)
		tr.Post("/{tournamentID}/upload", srv.uploadFile)
		tr.Delete("/{tournamentID}/players", srv.clearPlayers)
	})
	r.Get("/top-performers", srv.topPerformers)
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("Handled request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// simulateLatency holds every response for a fixed delay so cache
// behaviour in the gateway is visible during local development.
func simulateLatency(delay time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(delay)
			next.ServeHTTP(w, r)
		})
	}
}
