package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBar_Validate(t *testing.T) {
	now := time.Now()

	valid := &Bar{Timestamp: now, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10}
	require.NoError(t, valid.Validate())

	noTime := &Bar{Open: 100, High: 101, Low: 99, Close: 100.5}
	assert.ErrorIs(t, noTime.Validate(), ErrInvalidTimestamp)

	inverted := &Bar{Timestamp: now, High: 99, Low: 101}
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidBar)

	negVolume := &Bar{Timestamp: now, High: 101, Low: 99, Volume: -1}
	assert.ErrorIs(t, negVolume.Validate(), ErrInvalidVolume)
}

func TestSessionRecord_ToMap_RangeFields(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	statusTime := time.Date(2024, 3, 5, 4, 15, 0, 0, loc)
	rec := &SessionRecord{
		Date:          time.Date(2024, 3, 5, 0, 0, 0, 0, loc),
		Session:       SessionAsia,
		Kind:          KindRange,
		StartTime:     time.Date(2024, 3, 4, 18, 0, 0, 0, loc),
		EndTime:       time.Date(2024, 3, 4, 19, 30, 0, 0, loc),
		High:          110,
		Low:           100,
		Mid:           105,
		Status:        StatusLongTrue,
		TriggeredSide: SideHigh,
		StatusTime:    &statusTime,
	}

	m := rec.ToMap()
	assert.Equal(t, "2024-03-05", m["date"])
	assert.Equal(t, "Asia", m["session"])
	assert.Equal(t, 110.0, m["high"])
	assert.Equal(t, 105.0, m["mid"])
	assert.Equal(t, "Long True", m["status"])
	assert.Equal(t, "High", m["triggered_side"])
	assert.Equal(t, false, m["broken"])
	assert.NotContains(t, m, "price")
	assert.NotContains(t, m, "broken_time")
}

func TestSessionRecord_ToMap_ScrubsNonFinite(t *testing.T) {
	rec := &SessionRecord{
		Date:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Session:   SessionLondon,
		Kind:      KindRange,
		StartTime: time.Date(2024, 3, 5, 2, 30, 0, 0, time.UTC),
		High:      math.NaN(),
		Low:       math.Inf(-1),
		Mid:       math.Inf(1),
	}

	m := rec.ToMap()
	assert.Nil(t, m["high"])
	assert.Nil(t, m["low"])
	assert.Nil(t, m["mid"])
}

func TestSessionRecord_ToMap_PointLevel(t *testing.T) {
	rec := &SessionRecord{
		Date:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Session:   LevelPDH,
		Kind:      KindPoint,
		StartTime: time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC),
		Price:     4321.25,
	}

	m := rec.ToMap()
	assert.Equal(t, 4321.25, m["price"])
	assert.NotContains(t, m, "high")
	assert.NotContains(t, m, "end_time")
	assert.NotContains(t, m, "status")
}

func TestCompositePathPoint_ToMap(t *testing.T) {
	p := &CompositePathPoint{
		MinuteOffset: 30,
		MedianHigh:   0.42,
		MedianLow:    -0.17,
		HighBands:    map[string]float64{"p95": 1.1, "p5": math.NaN()},
		SampleCount:  12,
	}

	m := p.ToMap()
	assert.Equal(t, 30, m["minute_offset"])
	assert.Equal(t, 0.42, m["median_high_pct"])
	assert.Equal(t, 1.1, m["high_p95"])
	assert.Nil(t, m["high_p5"])
}
