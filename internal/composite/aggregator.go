package composite

import (
	"sort"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/mohamedkhairy/session-analytics/internal/sessions"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
)

// Aggregator builds minute-bucketed, open-normalized composite price paths
// across a filtered set of trading days. Elapsed time is normalized to
// "minutes since the window's own start", so days line up regardless of
// weekday or DST offsets.
type Aggregator struct {
	sched       *sessions.Schedule
	percentiles []float64
}

// NewAggregator creates a composite path aggregator
func NewAggregator(sched *sessions.Schedule, percentiles []float64) *Aggregator {
	return &Aggregator{sched: sched, percentiles: percentiles}
}

// bucketSample collects per-day normalized highs and lows for one bucket.
type bucketSample struct {
	highs []float64
	lows  []float64
}

// Path aggregates the composite path for the given trading dates over the
// target window ("day" for the whole trading-day span, otherwise a named
// session). Days whose window open is not strictly positive are excluded.
func (a *Aggregator) Path(bars []models.Bar, dates []time.Time, target string, bucketMinutes int) ([]models.CompositePathPoint, error) {
	if bucketMinutes < 1 {
		return nil, models.ErrInvalidBucket
	}
	if target != models.TargetWholeDay {
		if _, _, ok := a.sched.Def(target); !ok {
			return nil, models.ErrUnknownSession
		}
	}

	buckets := make(map[int]*bucketSample)
	for _, date := range dates {
		a.collectDay(bars, date, target, bucketMinutes, buckets)
	}

	offsets := make([]int, 0, len(buckets))
	for off := range buckets {
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)

	points := make([]models.CompositePathPoint, 0, len(offsets))
	for _, off := range offsets {
		sample := buckets[off]
		n := len(sample.highs)

		point := models.CompositePathPoint{
			MinuteOffset: off,
			SampleCount:  n,
			HighBands:    bands(append([]float64(nil), sample.highs...), a.percentiles),
			LowBands:     bands(append([]float64(nil), sample.lows...), a.percentiles),
		}
		point.MedianHigh = median(sample.highs)
		point.MedianLow = median(sample.lows)
		points = append(points, point)
	}
	return points, nil
}

// collectDay normalizes one day's window into percent-from-open samples.
func (a *Aggregator) collectDay(bars []models.Bar, date time.Time, target string, bucketMinutes int, buckets map[int]*bucketSample) {
	start, end := a.window(date, target)
	window := sessions.SliceWindow(bars, start, end)
	if len(window) == 0 {
		return
	}

	open := window[0].Open
	if open <= 0 {
		// Guards the division below against zero and bad data.
		logger.DaysSkipped.WithLabelValues("bad_open").Inc()
		logger.Debug("excluding day with non-positive window open",
			logger.Time("date", date),
			logger.Float64("open", open),
		)
		return
	}

	for _, bar := range window {
		elapsed := int(bar.Timestamp.Sub(window[0].Timestamp).Minutes())
		if elapsed < 0 {
			continue
		}
		off := elapsed / bucketMinutes * bucketMinutes

		sample, ok := buckets[off]
		if !ok {
			sample = &bucketSample{}
			buckets[off] = sample
		}
		sample.highs = append(sample.highs, 100*(bar.High-open)/open)
		sample.lows = append(sample.lows, 100*(bar.Low-open)/open)
	}
}

// window resolves the absolute span for one date and target.
func (a *Aggregator) window(date time.Time, target string) (time.Time, time.Time) {
	if target == models.TargetWholeDay {
		return sessions.TradingDayStart(date), sessions.TradingDayEnd(date)
	}
	def, _, _ := a.sched.Def(target)
	return a.sched.Window(def, date)
}
