package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	Port          string
	StatsAPIURL   string
	DBPath        string
	MigrationsDir string
	Turso         TursoConfig
	CORS          CORSConfig
	Search        SearchConfig
	Cache         CacheConfig
	Client        ClientConfig
	LogLevel      string
}

// TursoConfig points the local database at an optional remote replica.
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// CORSConfig lists the origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// SearchConfig tunes the live-search behavior.
type SearchConfig struct {
	// Debounce is the quiet period before a typed query commits.
	Debounce time.Duration
}

// CacheConfig tunes the query cache.
type CacheConfig struct {
	// WarmOnStart primes the hot queries during startup.
	WarmOnStart bool
	// TTLs overrides per-namespace freshness windows. Namespaces absent
	// from the map keep their built-in defaults.
	TTLs map[string]time.Duration
}

// ClientConfig tunes the upstream stats API client.
type ClientConfig struct {
	Timeout time.Duration
}
