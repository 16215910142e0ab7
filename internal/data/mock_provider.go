package data

import (
	"context"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
)

// MockLoader serves a fixed in-memory bar series, for tests and local
// development without data files.
type MockLoader struct {
	series map[string][]models.Bar
}

// NewMockLoader creates a mock loader
func NewMockLoader() *MockLoader {
	return &MockLoader{series: make(map[string][]models.Bar)}
}

// SetSeries installs the bar series returned for an instrument.
func (m *MockLoader) SetSeries(instrument string, bars []models.Bar) {
	m.series[instrument] = bars
}

// Load returns the installed series, or nil when none was set.
func (m *MockLoader) Load(_ context.Context, instrument string) ([]models.Bar, error) {
	return m.series[instrument], nil
}

// SyntheticDay generates one trading day of flat one-minute bars around a
// base price, from the 18:00 open through the 17:00 close. Tests overlay
// specific bars on top of this scaffold.
func SyntheticDay(date time.Time, basePrice float64) []models.Bar {
	start := time.Date(date.Year(), date.Month(), date.Day(), 18, 0, 0, 0, date.Location()).AddDate(0, 0, -1)
	end := time.Date(date.Year(), date.Month(), date.Day(), 17, 0, 0, 0, date.Location())

	var bars []models.Bar
	for ts := start; ts.Before(end); ts = ts.Add(time.Minute) {
		bars = append(bars, models.Bar{
			Timestamp: ts,
			Open:      basePrice,
			High:      basePrice,
			Low:       basePrice,
			Close:     basePrice,
			Volume:    1,
		})
	}
	return bars
}
