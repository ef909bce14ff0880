package statsapi

import (
	"context"
	"io"
)

// StatsClient defines the interface for interacting with the football
// statistics backend. This allows mock implementations to be used in tests.
type StatsClient interface {
	ListPlayers(ctx context.Context, params PlayerListParams) (PlayerList, error)
	GetPlayer(ctx context.Context, id string) (Player, error)
	SearchPlayers(ctx context.Context, params SearchParams) (SearchResponse, error)
	UpdatePlayerStatus(ctx context.Context, playerID string, status TrackingStatus, notes string) (StatusChange, error)
	ListTracked(ctx context.Context, params TrackedParams) (PlayerList, error)
	RawData(ctx context.Context, params RawDataParams) (PlayerList, error)
	ListTournaments(ctx context.Context) ([]Tournament, error)
	TournamentStats(ctx context.Context, tournamentID int) (TournamentStats, error)
	TopPerformers(ctx context.Context, params TopParams) (TopPerformers, error)
	UploadFile(ctx context.Context, params UploadParams, file io.Reader) (UploadReport, error)
	ClearTournamentPlayers(ctx context.Context, tournamentID int, confirm bool) (ClearReport, error)
	Health(ctx context.Context) (HealthStatus, error)
}
