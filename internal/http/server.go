package http

import (
	"net/http"

	"github.com/scoutdeck/scoutdeck/internal/board"
	"github.com/scoutdeck/scoutdeck/internal/config"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/prefs"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/scoutdeck/scoutdeck/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func NewServer(client statsapi.StatsClient, cache *query.Cache, boards *board.Registry, prefsStore prefs.PrefsStore, uploader upload.Uploader, usage metrics.UsageStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Client:         client,
		Cache:          cache,
		Boards:         boards,
		Status:         board.NewStatusMutator(client, cache, metricsSvc, usage),
		Prefs:          prefsStore,
		Uploader:       uploader,
		Usage:          usage,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         chi.NewRouter(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	r := s.Router
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", s.MetricsHandler)
	r.Get("/health", s.HealthCheckHandler())

	r.Route("/api", func(api chi.Router) {
		api.Use(paramsMiddleware)

		api.Get("/health", s.BackendHealthHandler())

		api.Get("/players", s.ListPlayersHandler())
		api.Get("/players/tracked", s.TrackedPlayersHandler())
		api.Get("/players/search", s.SearchPlayersHandler())
		api.Get("/players/raw", s.RawDataHandler())
		api.Get("/players/{playerID}", s.GetPlayerHandler())
		api.Put("/players/{playerID}/status", s.UpdateStatusHandler())

		api.Get("/tournaments", s.ListTournamentsHandler())
		api.Get("/tournaments/{tournamentID}/stats", s.TournamentStatsHandler())
		api.Post("/tournaments/{tournamentID}/upload", s.UploadHandler())
		api.Get("/top-performers", s.TopPerformersHandler())
		api.Get("/uploads/last", s.LastUploadHandler())

		api.Route("/board/{owner}", func(b chi.Router) {
			b.Get("/", s.BoardViewHandler())
			b.Post("/search", s.BoardSearchHandler())
			b.Post("/filters", s.BoardFiltersHandler())
			b.Post("/sort", s.BoardSortHandler())
			b.Post("/page", s.BoardPageHandler())
			b.Post("/page-size", s.BoardPageSizeHandler())
			b.Post("/reset", s.BoardResetHandler())
		})

		api.Get("/columns", s.GetColumnsHandler())
		api.Put("/columns", s.SaveColumnsHandler())
		api.Post("/columns/preset", s.ColumnsPresetHandler())

		api.Route("/admin", func(admin chi.Router) {
			admin.Post("/invalidate", s.InvalidateCacheHandler())
			admin.Delete("/tournaments/{tournamentID}/players", s.ClearTournamentHandler())
			admin.Get("/usage", s.UsageHandler())
		})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
