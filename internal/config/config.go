package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		Port:          getEnv("PORT"),
		StatsAPIURL:   getEnv("STATS_API_URL"),
		DBPath:        getEnvOr("DB_PATH", "scoutdeck.db"),
		MigrationsDir: getEnvOr("MIGRATIONS_DIR", "./migrations"),
		Turso: TursoConfig{
			PrimaryURL: getEnvOr("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvOr("TURSO_AUTH_TOKEN", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitAndTrim(getEnvOr("CORS_ORIGINS", "*")),
		},
		Search: SearchConfig{
			Debounce: time.Duration(getEnvInt("SEARCH_DEBOUNCE_MS", 300)) * time.Millisecond,
		},
		Cache: CacheConfig{
			WarmOnStart: getEnvBool("WARM_CACHE", true),
			TTLs:        cacheTTLs(),
		},
		Client: ClientConfig{
			Timeout: time.Duration(getEnvInt("STATS_API_TIMEOUT_MS", 10_000)) * time.Millisecond,
		},
		LogLevel: getEnvOr("LOG_LEVEL", "info"),
	}
	return cfg
}

// cacheTTLs collects the optional per-namespace freshness overrides. Only
// namespaces with an explicit env value end up in the map.
func cacheTTLs() map[string]time.Duration {
	envToNamespace := map[string]string{
		"CACHE_TTL_PLAYERS_S":     "players",
		"CACHE_TTL_PLAYER_S":      "player",
		"CACHE_TTL_TRACKED_S":     "tracked",
		"CACHE_TTL_SEARCH_S":      "search",
		"CACHE_TTL_TOURNAMENTS_S": "tournaments",
		"CACHE_TTL_STATS_S":       "stats",
		"CACHE_TTL_TOP_S":         "top",
		"CACHE_TTL_RAW_S":         "raw",
	}

	ttls := make(map[string]time.Duration)
	for key, ns := range envToNamespace {
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			log.Warn("Ignoring invalid cache TTL override", "key", key, "value", raw)
			continue
		}
		ttls[ns] = time.Duration(seconds) * time.Second
	}
	return ttls
}

func getEnvOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn("Ignoring non-integer environment variable", "key", key, "value", raw)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn("Ignoring non-boolean environment variable", "key", key, "value", raw)
		return fallback
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
