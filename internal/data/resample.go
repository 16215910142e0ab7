package data

import (
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
)

// Resample aggregates minute bars into coarser fixed-timeframe bars:
// first open, max high, min low, last close, summed volume. Bars are
// assigned to buckets by flooring the timestamp to the timeframe. Input
// must be sorted ascending; output is too.
func Resample(bars []models.Bar, timeframe time.Duration) []models.Bar {
	if timeframe <= time.Minute || len(bars) == 0 {
		return bars
	}

	var out []models.Bar
	for _, b := range bars {
		bucket := b.Timestamp.Truncate(timeframe)
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(bucket) {
			cur := &out[n-1]
			if b.High > cur.High {
				cur.High = b.High
			}
			if b.Low < cur.Low {
				cur.Low = b.Low
			}
			cur.Close = b.Close
			cur.Volume += b.Volume
			continue
		}
		out = append(out, models.Bar{
			Timestamp: bucket,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	return out
}
