package status

import (
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
)

// DetectBroken scans the broken window for the first bar that trades
// through the session's mid level. The record is only marked when a bar's
// range straddles the mid; wicks count.
func DetectBroken(rec *models.SessionRecord, window []models.Bar) {
	for i := range window {
		bar := &window[i]
		if bar.Low <= rec.Mid && rec.Mid <= bar.High {
			rec.Broken = true
			t := bar.Timestamp
			rec.BrokenTime = &t
			return
		}
	}
}

// brokenReset returns the 18:00 Asia reset that closes the broken window
// for a window starting at the given instant: 18:00 on the start's
// calendar day, pushed one day forward when that instant would not be
// strictly after the start.
func brokenReset(start time.Time) time.Time {
	year, month, day := start.Date()
	reset := time.Date(year, month, day, 18, 0, 0, 0, start.Location())
	if !reset.After(start) {
		reset = reset.AddDate(0, 0, 1)
	}
	return reset
}
