package sessions

import (
	"sort"
	"testing"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatDay builds one trading day of flat one-minute bars at the base price.
func flatDay(loc *time.Location, date time.Time, price float64) []models.Bar {
	start := TradingDayStart(date)
	end := TradingDayEnd(date)

	var bars []models.Bar
	for ts := start; ts.Before(end); ts = ts.Add(time.Minute) {
		bars = append(bars, models.Bar{
			Timestamp: ts,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1,
		})
	}
	return bars
}

// setBar overlays OHLC onto the bar at the given timestamp.
func setBar(t *testing.T, bars []models.Bar, ts time.Time, open, high, low, close float64) {
	t.Helper()
	for i := range bars {
		if bars[i].Timestamp.Equal(ts) {
			bars[i].Open = open
			bars[i].High = high
			bars[i].Low = low
			bars[i].Close = close
			return
		}
	}
	t.Fatalf("no bar at %s", ts)
}

// findRecord returns the single record for a date and session.
func findRecord(t *testing.T, records []models.SessionRecord, date time.Time, session string) *models.SessionRecord {
	t.Helper()
	var found *models.SessionRecord
	for i := range records {
		if records[i].Date.Equal(date) && records[i].Session == session {
			require.Nil(t, found, "duplicate record for %s/%s", date, session)
			found = &records[i]
		}
	}
	require.NotNil(t, found, "no record for %s/%s", date, session)
	return found
}

func TestCompute_SessionAggregates(t *testing.T) {
	loc := nyLoc(t)
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)
	bars := flatDay(loc, date, 100)

	// One wide bar inside each named session window.
	setBar(t, bars, time.Date(2024, 3, 4, 18, 45, 0, 0, loc), 100, 110, 95, 100)  // Asia
	setBar(t, bars, time.Date(2024, 3, 5, 3, 0, 0, 0, loc), 100, 105, 99, 100)    // London
	setBar(t, bars, time.Date(2024, 3, 5, 8, 0, 0, 0, loc), 100, 103, 100, 100)   // NY1
	setBar(t, bars, time.Date(2024, 3, 5, 12, 0, 0, 0, loc), 100, 100.5, 96, 100) // NY2

	calc := NewCalculator(NewSchedule(loc), 1)
	records := calc.Compute(bars)

	asia := findRecord(t, records, date, models.SessionAsia)
	assert.Equal(t, 110.0, asia.High)
	assert.Equal(t, 95.0, asia.Low)
	assert.Equal(t, 102.5, asia.Mid)
	assert.Equal(t, time.Date(2024, 3, 4, 18, 0, 0, 0, loc), asia.StartTime)
	assert.Equal(t, time.Date(2024, 3, 4, 19, 30, 0, 0, loc), asia.EndTime)

	london := findRecord(t, records, date, models.SessionLondon)
	assert.Equal(t, 105.0, london.High)
	assert.Equal(t, 99.0, london.Low)

	ny1 := findRecord(t, records, date, models.SessionNY1)
	assert.Equal(t, 103.0, ny1.High)
	assert.Equal(t, 100.0, ny1.Low)

	ny2 := findRecord(t, records, date, models.SessionNY2)
	assert.Equal(t, 96.0, ny2.Low)
}

func TestCompute_PointLevels(t *testing.T) {
	loc := nyLoc(t)
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)
	bars := flatDay(loc, date, 100)

	setBar(t, bars, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), 101.5, 101.5, 101.5, 101.5)
	setBar(t, bars, time.Date(2024, 3, 5, 7, 30, 0, 0, loc), 102.5, 102.5, 102.5, 102.5)
	setBar(t, bars, time.Date(2024, 3, 4, 18, 0, 0, 0, loc), 99.5, 99.5, 99.5, 99.5)

	calc := NewCalculator(NewSchedule(loc), 1)
	records := calc.Compute(bars)

	midnight := findRecord(t, records, date, models.LevelMidnightOpen)
	assert.Equal(t, 101.5, midnight.Price)
	assert.Equal(t, models.KindPoint, midnight.Kind)

	open730 := findRecord(t, records, date, models.LevelOpen730)
	assert.Equal(t, 102.5, open730.Price)

	globex := findRecord(t, records, date, models.LevelGlobexOpen)
	assert.Equal(t, 99.5, globex.Price)
	assert.Equal(t, time.Date(2024, 3, 4, 18, 0, 0, 0, loc), globex.StartTime)

	openingRange := findRecord(t, records, date, models.SessionOpeningRange)
	assert.Equal(t, models.KindRange, openingRange.Kind)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 30, 0, 0, loc), openingRange.StartTime)
}

func TestCompute_MissingWindowAbsent(t *testing.T) {
	loc := nyLoc(t)
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)

	// Keep only the Asia window's bars; every other window has no data
	// and must produce no record rather than a null-filled one.
	var bars []models.Bar
	for _, b := range flatDay(loc, date, 100) {
		if b.Timestamp.Hour() >= 18 {
			bars = append(bars, b)
		}
	}

	calc := NewCalculator(NewSchedule(loc), 1)
	records := calc.Compute(bars)

	findRecord(t, records, date, models.SessionAsia)
	for _, rec := range records {
		assert.NotEqual(t, models.SessionLondon, rec.Session)
		assert.NotEqual(t, models.SessionNY1, rec.Session)
		assert.NotEqual(t, models.SessionNY2, rec.Session)
	}
}

func TestCompute_EmptySeries(t *testing.T) {
	loc := nyLoc(t)
	calc := NewCalculator(NewSchedule(loc), 1)
	assert.Empty(t, calc.Compute(nil))
}

func TestCompute_ContainmentAndNoOverlap(t *testing.T) {
	loc := nyLoc(t)
	sched := NewSchedule(loc)
	calc := NewCalculator(sched, 1)

	var bars []models.Bar
	for day := 4; day <= 6; day++ {
		bars = append(bars, flatDay(loc, time.Date(2024, 3, day, 0, 0, 0, 0, loc), 100)...)
	}
	records := calc.Compute(bars)
	require.NotEmpty(t, records)

	named := map[string]bool{
		models.SessionAsia: true, models.SessionLondon: true,
		models.SessionNY1: true, models.SessionNY2: true,
	}

	byDate := make(map[time.Time][]models.SessionRecord)
	for _, rec := range records {
		// Every record sits inside its own trading-day span.
		assert.False(t, rec.StartTime.Before(TradingDayStart(rec.Date)),
			"%s/%s starts before the trading day", rec.Date, rec.Session)
		if !rec.EndTime.IsZero() {
			assert.False(t, rec.EndTime.After(TradingDayEnd(rec.Date)),
				"%s/%s ends after the trading day", rec.Date, rec.Session)
		}
		if named[rec.Session] {
			byDate[rec.Date] = append(byDate[rec.Date], rec)
		}
	}

	// Named sessions within one day never overlap.
	for date, day := range byDate {
		sort.Slice(day, func(i, j int) bool { return day[i].StartTime.Before(day[j].StartTime) })
		for i := 1; i < len(day); i++ {
			assert.False(t, day[i].StartTime.Before(day[i-1].EndTime),
				"%s: %s overlaps %s", date, day[i].Session, day[i-1].Session)
		}
	}
}

func TestSliceWindow(t *testing.T) {
	loc := nyLoc(t)
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)
	bars := flatDay(loc, date, 100)

	start := time.Date(2024, 3, 5, 2, 30, 0, 0, loc)
	end := time.Date(2024, 3, 5, 3, 30, 0, 0, loc)
	window := SliceWindow(bars, start, end)

	require.Len(t, window, 60)
	assert.Equal(t, start, window[0].Timestamp)
	assert.Equal(t, end.Add(-time.Minute), window[len(window)-1].Timestamp)
}

func TestNextStart_WrapsToNextAsia(t *testing.T) {
	loc := nyLoc(t)
	sched := NewSchedule(loc)
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)

	_, ny2Idx, ok := sched.Def(models.SessionNY2)
	require.True(t, ok)

	// After NY2 the next named window is the following trading day's Asia
	// open: 18:00 on the NY2 session's own calendar day.
	assert.Equal(t, time.Date(2024, 3, 5, 18, 0, 0, 0, loc), sched.NextStart(ny2Idx, date))

	_, asiaIdx, ok := sched.Def(models.SessionAsia)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 2, 30, 0, 0, loc), sched.NextStart(asiaIdx, date))
}
