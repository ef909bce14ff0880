package upload

import (
	"context"
	"sync"
)

// MockUploader is a mock implementation of the Uploader interface for
// testing. It is safe for concurrent use.
type MockUploader struct {
	mu sync.Mutex

	// Spies for method calls
	RunFunc func(ctx context.Context, req Request) (*BatchResult, error)

	// Call records
	RunCalls []Request
}

// NewMock creates a new mock instance.
func NewMock() *MockUploader {
	return &MockUploader{}
}

var _ Uploader = (*MockUploader)(nil)

// Reset clears all call records.
func (m *MockUploader) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunCalls = nil
}

func (m *MockUploader) Run(ctx context.Context, req Request) (*BatchResult, error) {
	m.mu.Lock()
	m.RunCalls = append(m.RunCalls, req)
	fn := m.RunFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &BatchResult{
		ID:           "mock-batch",
		TournamentID: req.TournamentID,
		Season:       req.Season,
		Round:        req.Round,
	}, nil
}
