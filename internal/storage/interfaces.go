package storage

import (
	"context"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
)

// RecordStore persists finished per-day session records per instrument.
type RecordStore interface {
	// SaveRecords replaces the stored records for an instrument.
	SaveRecords(ctx context.Context, instrument string, records []models.SessionRecord) error

	// GetRecords returns the stored records for an instrument, newest run
	// only. Returns nil when nothing is stored.
	GetRecords(ctx context.Context, instrument string) ([]models.SessionRecord, error)

	// GetRecordsByDateRange returns stored records within [from, to].
	GetRecordsByDateRange(ctx context.Context, instrument string, from, to time.Time) ([]models.SessionRecord, error)

	// Close releases the underlying connection pool.
	Close() error
}

// BoundaryCache caches serialized (NaN-scrubbed) record maps at the
// service boundary. Entries live until explicitly invalidated.
type BoundaryCache interface {
	// GetSerialized returns the cached flat maps for an instrument, or
	// nil on miss.
	GetSerialized(ctx context.Context, instrument string) ([]map[string]interface{}, error)

	// PutSerialized replaces the cached flat maps for an instrument.
	PutSerialized(ctx context.Context, instrument string, records []map[string]interface{}) error

	// Invalidate drops one instrument's entry, or everything when the
	// instrument is empty.
	Invalidate(ctx context.Context, instrument string) error

	// Close releases the connection.
	Close() error
}
