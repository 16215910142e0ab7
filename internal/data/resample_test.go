package data

import (
	"testing"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResample_FiveMinute(t *testing.T) {
	t0 := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

	var bars []models.Bar
	for i := 0; i < 7; i++ {
		bars = append(bars, models.Bar{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Open:      100 + float64(i),
			High:      101 + float64(i),
			Low:       99 + float64(i),
			Close:     100.5 + float64(i),
			Volume:    10,
		})
	}

	out := Resample(bars, 5*time.Minute)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, t0, first.Timestamp)
	assert.Equal(t, 100.0, first.Open)  // first bar's open
	assert.Equal(t, 105.0, first.High)  // max high over bars 0-4
	assert.Equal(t, 99.0, first.Low)    // min low
	assert.Equal(t, 104.5, first.Close) // last bar's close
	assert.Equal(t, 50.0, first.Volume)

	second := out[1]
	assert.Equal(t, t0.Add(5*time.Minute), second.Timestamp)
	assert.Equal(t, 105.0, second.Open)
	assert.Equal(t, 20.0, second.Volume)
}

func TestResample_MinuteIsIdentity(t *testing.T) {
	bars := []models.Bar{{Timestamp: time.Now(), Open: 1, High: 1, Low: 1, Close: 1}}
	assert.Equal(t, bars, Resample(bars, time.Minute))
	assert.Empty(t, Resample(nil, 5*time.Minute))
}

func TestResample_GapsKeepSeparateBuckets(t *testing.T) {
	t0 := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	bars := []models.Bar{
		{Timestamp: t0, Open: 1, High: 2, Low: 1, Close: 2, Volume: 1},
		{Timestamp: t0.Add(17 * time.Minute), Open: 3, High: 4, Low: 3, Close: 4, Volume: 1},
	}

	out := Resample(bars, 5*time.Minute)
	require.Len(t, out, 2)
	assert.Equal(t, t0, out[0].Timestamp)
	assert.Equal(t, t0.Add(15*time.Minute), out[1].Timestamp)
}
