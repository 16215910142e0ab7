package engine

import (
	"sync"

	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
)

// RecordCache holds finished per-day records and parsed bar series keyed by
// instrument. Entries are populated lazily, replaced wholesale (never
// mutated in place) and evicted only by explicit invalidation, so
// concurrent readers never observe a partially updated entry. Injected
// into the engine rather than kept as package state so tests and parallel
// instrument runs get independent caches.
type RecordCache struct {
	mu      sync.RWMutex
	records map[string][]models.SessionRecord
	bars    map[string][]models.Bar
}

// NewRecordCache creates an empty record cache
func NewRecordCache() *RecordCache {
	return &RecordCache{
		records: make(map[string][]models.SessionRecord),
		bars:    make(map[string][]models.Bar),
	}
}

// GetRecords returns the cached records for an instrument, if present.
func (c *RecordCache) GetRecords(instrument string) ([]models.SessionRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	recs, ok := c.records[instrument]
	if ok {
		logger.CacheHits.WithLabelValues("hit").Inc()
	} else {
		logger.CacheHits.WithLabelValues("miss").Inc()
	}
	return recs, ok
}

// PutRecords replaces the cached records for an instrument.
func (c *RecordCache) PutRecords(instrument string, recs []models.SessionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[instrument] = recs
}

// GetBars returns the cached bar series for an instrument, if present.
func (c *RecordCache) GetBars(instrument string) ([]models.Bar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bars, ok := c.bars[instrument]
	return bars, ok
}

// PutBars replaces the cached bar series for an instrument.
func (c *RecordCache) PutBars(instrument string, bars []models.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bars[instrument] = bars
}

// Invalidate drops one instrument's cached records and bars.
func (c *RecordCache) Invalidate(instrument string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, instrument)
	delete(c.bars, instrument)
}

// Clear drops every cached entry.
func (c *RecordCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string][]models.SessionRecord)
	c.bars = make(map[string][]models.Bar)
}
