package prefs

import (
	"sync"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// MockStore is a mock implementation of the PrefsStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	ColumnsFunc        func(owner string) (ColumnSet, error)
	SaveColumnsFunc    func(owner string, set ColumnSet) error
	DeleteColumnsFunc  func(owner string) error
	LastUploadFunc     func(tournamentID int, kind statsapi.SliceKind) (*LastUpload, error)
	SaveLastUploadFunc func(rec LastUpload) error

	// Call records
	ColumnsCalls     []string
	SaveColumnsCalls []struct {
		Owner string
		Set   ColumnSet
	}
	DeleteColumnsCalls []string
	LastUploadCalls    []struct {
		TournamentID int
		Kind         statsapi.SliceKind
	}
	SaveLastUploadCalls []LastUpload
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

var _ PrefsStore = (*MockStore)(nil)

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ColumnsCalls = nil
	m.SaveColumnsCalls = nil
	m.DeleteColumnsCalls = nil
	m.LastUploadCalls = nil
	m.SaveLastUploadCalls = nil
}

func (m *MockStore) Columns(owner string) (ColumnSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ColumnsCalls = append(m.ColumnsCalls, owner)
	if m.ColumnsFunc != nil {
		return m.ColumnsFunc(owner)
	}
	return DefaultColumns(), nil
}

func (m *MockStore) SaveColumns(owner string, set ColumnSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveColumnsCalls = append(m.SaveColumnsCalls, struct {
		Owner string
		Set   ColumnSet
	}{owner, set})
	if m.SaveColumnsFunc != nil {
		return m.SaveColumnsFunc(owner, set)
	}
	return nil
}

func (m *MockStore) DeleteColumns(owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteColumnsCalls = append(m.DeleteColumnsCalls, owner)
	if m.DeleteColumnsFunc != nil {
		return m.DeleteColumnsFunc(owner)
	}
	return nil
}

func (m *MockStore) LastUpload(tournamentID int, kind statsapi.SliceKind) (*LastUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastUploadCalls = append(m.LastUploadCalls, struct {
		TournamentID int
		Kind         statsapi.SliceKind
	}{tournamentID, kind})
	if m.LastUploadFunc != nil {
		return m.LastUploadFunc(tournamentID, kind)
	}
	return nil, nil
}

func (m *MockStore) SaveLastUpload(rec LastUpload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveLastUploadCalls = append(m.SaveLastUploadCalls, rec)
	if m.SaveLastUploadFunc != nil {
		return m.SaveLastUploadFunc(rec)
	}
	return nil
}
