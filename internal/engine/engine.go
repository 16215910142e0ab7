package engine

import (
	"fmt"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/composite"
	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/mohamedkhairy/session-analytics/internal/sessions"
	"github.com/mohamedkhairy/session-analytics/internal/status"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
)

// Options configures the engine.
type Options struct {
	OpeningRangeMinutes int
	DefaultBucketMin    int
	PercentileBands     []float64
}

// Engine runs the full per-instrument session analytics pass: window
// extraction, previous levels, break classification, broken-mid detection,
// day filtering and composite paths. A single batch pass either completes
// or fails outright; there are no partial streaming results.
type Engine struct {
	sched      *sessions.Schedule
	calc       *sessions.Calculator
	levels     *sessions.PreviousLevelCalculator
	aggregator *composite.Aggregator
	cache      *RecordCache

	defaultBucketMin int
}

// New creates an engine for the given exchange schedule. The cache is
// injected so callers control sharing across instruments and tests.
func New(sched *sessions.Schedule, cache *RecordCache, opts Options) *Engine {
	if opts.DefaultBucketMin < 1 {
		opts.DefaultBucketMin = 1
	}
	return &Engine{
		sched:            sched,
		calc:             sessions.NewCalculator(sched, opts.OpeningRangeMinutes),
		levels:           sessions.NewPreviousLevelCalculator(sched),
		aggregator:       composite.NewAggregator(sched, opts.PercentileBands),
		cache:            cache,
		defaultBucketMin: opts.DefaultBucketMin,
	}
}

// Schedule exposes the engine's session schedule.
func (e *Engine) Schedule() *sessions.Schedule {
	return e.sched
}

// validateBars enforces the loader contract: ascending, unique timestamps.
// Violations are fatal for the whole call; the engine does not self-heal.
func validateBars(bars []models.Bar) error {
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp.Before(bars[i-1].Timestamp) {
			return fmt.Errorf("%w: index %d", models.ErrUnsortedBars, i)
		}
		if bars[i].Timestamp.Equal(bars[i-1].Timestamp) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateTimestamp, bars[i].Timestamp)
		}
	}
	return nil
}

// ComputeSessions extracts session windows, point levels and previous-day/
// previous-week reference levels for every trading day in the series. Zero
// bars yield an empty slice, never an error.
func (e *Engine) ComputeSessions(bars []models.Bar) ([]models.SessionRecord, error) {
	if err := validateBars(bars); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		logger.ComputeDuration.WithLabelValues("sessions").Observe(time.Since(start).Seconds())
	}()

	records := e.calc.Compute(bars)
	records = append(records, e.levels.Compute(records, bars)...)
	return records, nil
}

// ComputeStatusAndBroken annotates the given records with break status and
// broken-mid fields, in place, and returns them.
func (e *Engine) ComputeStatusAndBroken(bars []models.Bar, records []models.SessionRecord) ([]models.SessionRecord, error) {
	if err := validateBars(bars); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		logger.ComputeDuration.WithLabelValues("status").Observe(time.Since(start).Seconds())
	}()

	status.Annotate(bars, records, e.sched)
	return records, nil
}

// Records runs the full annotated pass for one instrument, read-through
// cached. The cache entry is replaced wholesale, never mutated.
func (e *Engine) Records(instrument string, bars []models.Bar) ([]models.SessionRecord, error) {
	if e.cache != nil {
		if recs, ok := e.cache.GetRecords(instrument); ok {
			return recs, nil
		}
	}

	records, err := e.ComputeSessions(bars)
	if err != nil {
		return nil, err
	}
	records, err = e.ComputeStatusAndBroken(bars, records)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.PutRecords(instrument, records)
	}
	return records, nil
}

// CompositePath builds the percentile-banded composite path for the
// matched dates. A bucket size below 1 falls back to the configured
// default.
func (e *Engine) CompositePath(bars []models.Bar, dates []time.Time, target string, bucketMinutes int) ([]models.CompositePathPoint, error) {
	if err := validateBars(bars); err != nil {
		return nil, err
	}
	if bucketMinutes < 1 {
		bucketMinutes = e.defaultBucketMin
	}
	start := time.Now()
	defer func() {
		logger.ComputeDuration.WithLabelValues("composite").Observe(time.Since(start).Seconds())
	}()

	return e.aggregator.Path(bars, dates, target, bucketMinutes)
}

// ClearCache invalidates one instrument's cache entry, or everything when
// the instrument is empty.
func (e *Engine) ClearCache(instrument string) {
	if e.cache == nil {
		return
	}
	if instrument == "" {
		e.cache.Clear()
		return
	}
	e.cache.Invalidate(instrument)
}
