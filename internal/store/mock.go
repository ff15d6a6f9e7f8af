package store

import (
	"sync"

	"fjacquet/card-recon/internal/models"
)

// MockCleanStore keeps saved records in memory, keyed by path.
type MockCleanStore struct {
	mu    sync.Mutex
	Files map[string][]models.TransactionRecord

	SaveError error
	LoadError error
}

// NewMockCleanStore returns an empty MockCleanStore.
func NewMockCleanStore() *MockCleanStore {
	return &MockCleanStore{Files: make(map[string][]models.TransactionRecord)}
}

func (m *MockCleanStore) Save(path string, records []models.TransactionRecord) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Files == nil {
		m.Files = make(map[string][]models.TransactionRecord)
	}
	m.Files[path] = append([]models.TransactionRecord(nil), records...)
	return nil
}

func (m *MockCleanStore) Load(path string) ([]models.TransactionRecord, models.NormalizeStats, error) {
	if m.LoadError != nil {
		return nil, models.NormalizeStats{}, m.LoadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	records := append([]models.TransactionRecord(nil), m.Files[path]...)
	return records, models.NormalizeStats{RowsRead: len(records), RowsKept: len(records)}, nil
}
