package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ RecordStore   = (*MockRecordStore)(nil)
	_ BoundaryCache = (*MockBoundaryCache)(nil)
)

func TestMockRecordStore_DateRange(t *testing.T) {
	store := NewMockRecordStore()
	ctx := context.Background()

	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	err := store.SaveRecords(ctx, "ES", []models.SessionRecord{
		{Date: d(4), Session: models.SessionAsia},
		{Date: d(5), Session: models.SessionAsia},
		{Date: d(6), Session: models.SessionAsia},
	})
	require.NoError(t, err)

	got, err := store.GetRecordsByDateRange(ctx, "ES", d(5), d(6))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	store.GetErr = errors.New("down")
	_, err = store.GetRecords(ctx, "ES")
	assert.Error(t, err)
}

func TestMockBoundaryCache_Invalidate(t *testing.T) {
	cache := NewMockBoundaryCache()
	ctx := context.Background()

	require.NoError(t, cache.PutSerialized(ctx, "ES", []map[string]interface{}{{"session": "Asia"}}))
	require.NoError(t, cache.PutSerialized(ctx, "NQ", []map[string]interface{}{{"session": "Asia"}}))

	require.NoError(t, cache.Invalidate(ctx, "ES"))
	got, err := cache.GetSerialized(ctx, "ES")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Empty instrument clears everything.
	require.NoError(t, cache.Invalidate(ctx, ""))
	got, err = cache.GetSerialized(ctx, "NQ")
	require.NoError(t, err)
	assert.Nil(t, got)
}
