package storage

import (
	"context"
	"sync"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
)

// MockRecordStore is an in-memory RecordStore for tests.
type MockRecordStore struct {
	mu      sync.RWMutex
	records map[string][]models.SessionRecord

	SaveErr error
	GetErr  error
}

// NewMockRecordStore creates a mock record store
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{records: make(map[string][]models.SessionRecord)}
}

func (m *MockRecordStore) SaveRecords(_ context.Context, instrument string, records []models.SessionRecord) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[instrument] = append([]models.SessionRecord(nil), records...)
	return nil
}

func (m *MockRecordStore) GetRecords(_ context.Context, instrument string) ([]models.SessionRecord, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[instrument], nil
}

func (m *MockRecordStore) GetRecordsByDateRange(ctx context.Context, instrument string, from, to time.Time) ([]models.SessionRecord, error) {
	all, err := m.GetRecords(ctx, instrument)
	if err != nil {
		return nil, err
	}
	var out []models.SessionRecord
	for _, rec := range all {
		if !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MockRecordStore) Close() error { return nil }

// MockBoundaryCache is an in-memory BoundaryCache for tests.
type MockBoundaryCache struct {
	mu      sync.RWMutex
	entries map[string][]map[string]interface{}
}

// NewMockBoundaryCache creates a mock boundary cache
func NewMockBoundaryCache() *MockBoundaryCache {
	return &MockBoundaryCache{entries: make(map[string][]map[string]interface{})}
}

func (m *MockBoundaryCache) GetSerialized(_ context.Context, instrument string) ([]map[string]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[instrument], nil
}

func (m *MockBoundaryCache) PutSerialized(_ context.Context, instrument string, records []map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[instrument] = records
	return nil
}

func (m *MockBoundaryCache) Invalidate(_ context.Context, instrument string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if instrument == "" {
		m.entries = make(map[string][]map[string]interface{})
		return nil
	}
	delete(m.entries, instrument)
	return nil
}

func (m *MockBoundaryCache) Close() error { return nil }
