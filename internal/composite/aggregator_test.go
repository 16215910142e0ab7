package composite

import (
	"testing"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/mohamedkhairy/session-analytics/internal/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 7.0, median([]float64{7}))
	assert.True(t, median(nil) != median(nil)) // NaN
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	assert.Equal(t, 2.5, percentile(sorted, 50))
	assert.Equal(t, 1.75, percentile(sorted, 25))
	assert.Equal(t, 1.0, percentile(sorted, 0))
	assert.Equal(t, 4.0, percentile(sorted, 100))
	assert.Equal(t, 9.0, percentile([]float64{9}, 75))
}

func TestBandKey(t *testing.T) {
	assert.Equal(t, "p25", bandKey(25))
	assert.Equal(t, "p2.5", bandKey(2.5))
	assert.Equal(t, "p99", bandKey(99))
}

// asiaBars lays one bar per minute through the 18:00-19:30 window of the
// given trading date, at a fixed percent spread around the open.
func asiaBars(loc *time.Location, date time.Time, open, highPct float64) []models.Bar {
	start := sessions.TradingDayStart(date)

	var bars []models.Bar
	for m := 0; m < 90; m++ {
		high := open * (1 + highPct/100)
		bars = append(bars, models.Bar{
			Timestamp: start.Add(time.Duration(m) * time.Minute),
			Open:      open,
			High:      high,
			Low:       open,
			Close:     open,
			Volume:    1,
		})
	}
	return bars
}

func compositeFixture(t *testing.T) (*Aggregator, []models.Bar, []time.Time, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	d1 := time.Date(2024, 3, 4, 0, 0, 0, 0, loc)
	d2 := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)

	var bars []models.Bar
	bars = append(bars, asiaBars(loc, d1, 100, 1.0)...) // +1% highs
	bars = append(bars, asiaBars(loc, d2, 200, 2.0)...) // +2% highs

	agg := NewAggregator(sessions.NewSchedule(loc), []float64{25, 75})
	return agg, bars, []time.Time{d1, d2}, loc
}

func TestPath_NormalizesAcrossDays(t *testing.T) {
	agg, bars, dates, _ := compositeFixture(t)

	points, err := agg.Path(bars, dates, models.SessionAsia, 30)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// 90 session minutes in 30-minute buckets: offsets 0, 30, 60.
	assert.Equal(t, 0, points[0].MinuteOffset)
	assert.Equal(t, 30, points[1].MinuteOffset)
	assert.Equal(t, 60, points[2].MinuteOffset)

	for _, p := range points {
		// Two days, 30 bars each per bucket.
		assert.Equal(t, 60, p.SampleCount)
		// Per-day highs are +1% and +2% of the open, so the median of the
		// pooled sample is halfway between.
		assert.InDelta(t, 1.5, p.MedianHigh, 1e-9)
		assert.InDelta(t, 0.0, p.MedianLow, 1e-9)
		assert.Contains(t, p.HighBands, "p25")
		assert.Contains(t, p.HighBands, "p75")
	}
}

func TestPath_WholeDayTarget(t *testing.T) {
	agg, bars, dates, _ := compositeFixture(t)

	points, err := agg.Path(bars, dates, models.TargetWholeDay, 60)
	require.NoError(t, err)
	require.NotEmpty(t, points)

	// Bars only cover the first 90 minutes of the day, so only the first
	// two hourly buckets are observed.
	require.Len(t, points, 2)
	assert.Equal(t, 0, points[0].MinuteOffset)
	assert.Equal(t, 60, points[1].MinuteOffset)
}

func TestPath_ExcludesNonPositiveOpen(t *testing.T) {
	agg, bars, dates, loc := compositeFixture(t)

	// A third day opening at zero contributes nothing.
	d3 := time.Date(2024, 3, 6, 0, 0, 0, 0, loc)
	bars = append(bars, asiaBars(loc, d3, 0, 1.0)...)
	dates = append(dates, d3)

	points, err := agg.Path(bars, dates, models.SessionAsia, 30)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 60, points[0].SampleCount)
}

func TestPath_Validation(t *testing.T) {
	agg, bars, dates, _ := compositeFixture(t)

	_, err := agg.Path(bars, dates, models.SessionAsia, 0)
	assert.ErrorIs(t, err, models.ErrInvalidBucket)

	_, err = agg.Path(bars, dates, "Tokyo", 30)
	assert.ErrorIs(t, err, models.ErrUnknownSession)
}

func TestPath_NoMatchedDays(t *testing.T) {
	agg, bars, _, _ := compositeFixture(t)

	points, err := agg.Path(bars, nil, models.SessionAsia, 30)
	require.NoError(t, err)
	assert.Empty(t, points)
}
