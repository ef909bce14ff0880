package statsapi

import (
	"context"
	"io"
	"sync"
)

// MockClient is a mock implementation of the StatsClient interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	ListPlayersFunc            func(params PlayerListParams) (PlayerList, error)
	GetPlayerFunc              func(id string) (Player, error)
	SearchPlayersFunc          func(params SearchParams) (SearchResponse, error)
	UpdatePlayerStatusFunc     func(playerID string, status TrackingStatus, notes string) (StatusChange, error)
	ListTrackedFunc            func(params TrackedParams) (PlayerList, error)
	RawDataFunc                func(params RawDataParams) (PlayerList, error)
	ListTournamentsFunc        func() ([]Tournament, error)
	TournamentStatsFunc        func(tournamentID int) (TournamentStats, error)
	TopPerformersFunc          func(params TopParams) (TopPerformers, error)
	UploadFileFunc             func(params UploadParams, file io.Reader) (UploadReport, error)
	ClearTournamentPlayersFunc func(tournamentID int, confirm bool) (ClearReport, error)
	HealthFunc                 func() (HealthStatus, error)

	// Call records
	ListPlayersCalls            []PlayerListParams
	GetPlayerCalls              []string
	SearchPlayersCalls          []SearchParams
	UpdatePlayerStatusCalls     []StatusUpdateCall
	ListTrackedCalls            []TrackedParams
	RawDataCalls                []RawDataParams
	ListTournamentsCalls        int
	TournamentStatsCalls        []int
	TopPerformersCalls          []TopParams
	UploadFileCalls             []UploadParams
	ClearTournamentPlayersCalls []int
	HealthCalls                 int
}

// StatusUpdateCall records one UpdatePlayerStatus invocation.
type StatusUpdateCall struct {
	PlayerID string
	Status   TrackingStatus
	Notes    string
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListPlayersCalls = nil
	m.GetPlayerCalls = nil
	m.SearchPlayersCalls = nil
	m.UpdatePlayerStatusCalls = nil
	m.ListTrackedCalls = nil
	m.RawDataCalls = nil
	m.ListTournamentsCalls = 0
	m.TournamentStatsCalls = nil
	m.TopPerformersCalls = nil
	m.UploadFileCalls = nil
	m.ClearTournamentPlayersCalls = nil
	m.HealthCalls = 0
}

func (m *MockClient) ListPlayers(_ context.Context, params PlayerListParams) (PlayerList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListPlayersCalls = append(m.ListPlayersCalls, params)
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(params)
	}
	return PlayerList{Success: true, Page: params.Page, PerPage: params.PerPage}, nil
}

func (m *MockClient) GetPlayer(_ context.Context, id string) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPlayerCalls = append(m.GetPlayerCalls, id)
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return Player{ID: id}, nil
}

func (m *MockClient) SearchPlayers(_ context.Context, params SearchParams) (SearchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchPlayersCalls = append(m.SearchPlayersCalls, params)
	if m.SearchPlayersFunc != nil {
		return m.SearchPlayersFunc(params)
	}
	return SearchResponse{Query: params.Query}, nil
}

func (m *MockClient) UpdatePlayerStatus(_ context.Context, playerID string, status TrackingStatus, notes string) (StatusChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatePlayerStatusCalls = append(m.UpdatePlayerStatusCalls, StatusUpdateCall{PlayerID: playerID, Status: status, Notes: notes})
	if m.UpdatePlayerStatusFunc != nil {
		return m.UpdatePlayerStatusFunc(playerID, status, notes)
	}
	return StatusChange{PlayerID: playerID, NewStatus: status}, nil
}

func (m *MockClient) ListTracked(_ context.Context, params TrackedParams) (PlayerList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListTrackedCalls = append(m.ListTrackedCalls, params)
	if m.ListTrackedFunc != nil {
		return m.ListTrackedFunc(params)
	}
	return PlayerList{Success: true, Page: params.Page, PerPage: params.PerPage}, nil
}

func (m *MockClient) RawData(_ context.Context, params RawDataParams) (PlayerList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RawDataCalls = append(m.RawDataCalls, params)
	if m.RawDataFunc != nil {
		return m.RawDataFunc(params)
	}
	return PlayerList{Success: true, Page: params.Page, PerPage: params.Limit}, nil
}

func (m *MockClient) ListTournaments(_ context.Context) ([]Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListTournamentsCalls++
	if m.ListTournamentsFunc != nil {
		return m.ListTournamentsFunc()
	}
	return []Tournament{}, nil
}

func (m *MockClient) TournamentStats(_ context.Context, tournamentID int) (TournamentStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TournamentStatsCalls = append(m.TournamentStatsCalls, tournamentID)
	if m.TournamentStatsFunc != nil {
		return m.TournamentStatsFunc(tournamentID)
	}
	return TournamentStats{TournamentID: tournamentID}, nil
}

func (m *MockClient) TopPerformers(_ context.Context, params TopParams) (TopPerformers, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopPerformersCalls = append(m.TopPerformersCalls, params)
	if m.TopPerformersFunc != nil {
		return m.TopPerformersFunc(params)
	}
	return TopPerformers{Period: params.Period}, nil
}

func (m *MockClient) UploadFile(_ context.Context, params UploadParams, file io.Reader) (UploadReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UploadFileCalls = append(m.UploadFileCalls, params)
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(params, file)
	}
	return UploadReport{FileName: params.FileName, TournamentID: params.TournamentID}, nil
}

func (m *MockClient) ClearTournamentPlayers(_ context.Context, tournamentID int, confirm bool) (ClearReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearTournamentPlayersCalls = append(m.ClearTournamentPlayersCalls, tournamentID)
	if m.ClearTournamentPlayersFunc != nil {
		return m.ClearTournamentPlayersFunc(tournamentID, confirm)
	}
	return ClearReport{TournamentID: tournamentID}, nil
}

func (m *MockClient) Health(_ context.Context) (HealthStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HealthCalls++
	if m.HealthFunc != nil {
		return m.HealthFunc()
	}
	return HealthStatus{Status: "healthy"}, nil
}

// Ensure MockClient implements the StatsClient interface.
var _ StatsClient = (*MockClient)(nil)
