package sessions

import (
	"sort"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
)

// SessionDef is one fixed intraday time band, expressed as local
// minutes-since-midnight. Bands may cross local midnight; the end is
// anchored to the day after the start whenever end < start.
type SessionDef struct {
	Name     string
	StartMin int
	EndMin   int
	// HasBroken controls whether the broken-mid detector runs for this
	// session. NY2 has no later window before the daily reset, so it is
	// configured out.
	HasBroken bool
}

// Schedule is the fixed set of named sessions in chronological order
// within a trading day.
type Schedule struct {
	Defs []SessionDef
	loc  *time.Location
}

// NewSchedule builds the standard four-session schedule in the given zone.
func NewSchedule(loc *time.Location) *Schedule {
	return &Schedule{
		Defs: []SessionDef{
			{Name: models.SessionAsia, StartMin: 18 * 60, EndMin: 19*60 + 30, HasBroken: true},
			{Name: models.SessionLondon, StartMin: 2*60 + 30, EndMin: 3*60 + 30, HasBroken: true},
			{Name: models.SessionNY1, StartMin: 7*60 + 30, EndMin: 8*60 + 30, HasBroken: true},
			{Name: models.SessionNY2, StartMin: 11*60 + 30, EndMin: 12*60 + 30, HasBroken: false},
		},
		loc: loc,
	}
}

// Location returns the schedule's exchange zone.
func (s *Schedule) Location() *time.Location {
	return s.loc
}

// Def looks up a session definition by name.
func (s *Schedule) Def(name string) (SessionDef, int, bool) {
	for i, d := range s.Defs {
		if d.Name == name {
			return d, i, true
		}
	}
	return SessionDef{}, 0, false
}

// Window returns the absolute [start, end) span of the session within the
// given trading day. Sessions starting at or after the rollover sit on the
// previous calendar day.
func (s *Schedule) Window(def SessionDef, date time.Time) (time.Time, time.Time) {
	startDay := date
	if def.StartMin >= rolloverMinute {
		startDay = date.AddDate(0, 0, -1)
	}
	start := localAt(startDay, def.StartMin/60, def.StartMin%60, s.loc)

	endDay := startDay
	if def.EndMin < def.StartMin {
		endDay = endDay.AddDate(0, 0, 1)
	}
	end := localAt(endDay, def.EndMin/60, def.EndMin%60, s.loc)
	return start, end
}

// NextStart returns the start of the chronologically next named session
// after index i on the given trading day, wrapping to the following day's
// Asia open for the last session.
func (s *Schedule) NextStart(i int, date time.Time) time.Time {
	if i+1 < len(s.Defs) {
		start, _ := s.Window(s.Defs[i+1], date)
		return start
	}
	start, _ := s.Window(s.Defs[0], date.AddDate(0, 0, 1))
	return start
}

// Calculator extracts per-trading-day session windows and point levels.
type Calculator struct {
	sched           *Schedule
	openingRangeMin int
}

// NewCalculator creates a session window calculator
func NewCalculator(sched *Schedule, openingRangeMin int) *Calculator {
	if openingRangeMin < 1 {
		openingRangeMin = 1
	}
	return &Calculator{sched: sched, openingRangeMin: openingRangeMin}
}

// dayBars is one trading day's slice of the input series.
type dayBars struct {
	date time.Time
	bars []models.Bar
}

// groupByTradingDay splits a sorted bar series into per-trading-day runs.
func groupByTradingDay(bars []models.Bar) []dayBars {
	var days []dayBars
	for _, b := range bars {
		d := TradingDate(b.Timestamp)
		if len(days) == 0 || !days[len(days)-1].date.Equal(d) {
			days = append(days, dayBars{date: d})
		}
		days[len(days)-1].bars = append(days[len(days)-1].bars, b)
	}
	return days
}

// SliceWindow returns the sub-slice of a sorted bar series with
// start <= timestamp < end.
func SliceWindow(bars []models.Bar, start, end time.Time) []models.Bar {
	lo := sort.Search(len(bars), func(i int) bool { return !bars[i].Timestamp.Before(start) })
	hi := sort.Search(len(bars), func(i int) bool { return !bars[i].Timestamp.Before(end) })
	return bars[lo:hi]
}

// Compute produces session window and point level records for every trading
// day present in the series. Days or windows with no bars yield no record.
// Output order is unspecified across session types; sort by StartTime for
// chronology.
func (c *Calculator) Compute(bars []models.Bar) []models.SessionRecord {
	var records []models.SessionRecord

	for _, day := range groupByTradingDay(bars) {
		records = append(records, c.computeDay(day)...)
	}
	return records
}

func (c *Calculator) computeDay(day dayBars) []models.SessionRecord {
	var records []models.SessionRecord

	for _, def := range c.sched.Defs {
		start, end := c.sched.Window(def, day.date)
		window := SliceWindow(day.bars, start, end)
		if len(window) == 0 {
			logger.DaysSkipped.WithLabelValues("no_bars").Inc()
			logger.Debug("no bars in session window",
				logger.Time("date", day.date),
				logger.String("session", def.Name),
			)
			continue
		}

		rec := rangeRecord(day.date, def.Name, start, end, window)
		records = append(records, rec)

		if def.Name == models.SessionAsia {
			records = append(records, models.SessionRecord{
				Date:      day.date,
				Session:   models.LevelGlobexOpen,
				Kind:      models.KindPoint,
				StartTime: window[0].Timestamp,
				Price:     window[0].Open,
			})
		}
	}

	records = append(records, c.pointLevels(day)...)
	records = append(records, c.openingRange(day)...)
	records = append(records, c.twelveHour(day)...)
	return records
}

// rangeRecord aggregates high/low/mid over a non-empty window.
func rangeRecord(date time.Time, name string, start, end time.Time, window []models.Bar) models.SessionRecord {
	high := window[0].High
	low := window[0].Low
	for _, b := range window[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return models.SessionRecord{
		Date:      date,
		Session:   name,
		Kind:      models.KindRange,
		StartTime: start,
		EndTime:   end,
		High:      high,
		Low:       low,
		Mid:       (high + low) / 2,
		Open:      window[0].Open,
	}
}

// pointLevels computes the open-price levels anchored to fixed clock times.
func (c *Calculator) pointLevels(day dayBars) []models.SessionRecord {
	targets := []struct {
		name string
		hour int
		min  int
	}{
		{models.LevelMidnightOpen, 0, 0},
		{models.LevelOpen730, 7, 30},
	}

	var records []models.SessionRecord
	for _, tgt := range targets {
		at := localAt(day.date, tgt.hour, tgt.min, c.sched.loc)
		bar, ok := nearestBar(day.bars, at)
		if !ok {
			continue
		}
		records = append(records, models.SessionRecord{
			Date:      day.date,
			Session:   tgt.name,
			Kind:      models.KindPoint,
			StartTime: bar.Timestamp,
			Price:     bar.Open,
		})
	}
	return records
}

// openingRange extracts the 09:30 opening range for the configured duration.
func (c *Calculator) openingRange(day dayBars) []models.SessionRecord {
	start := localAt(day.date, 9, 30, c.sched.loc)
	end := start.Add(time.Duration(c.openingRangeMin) * time.Minute)
	window := SliceWindow(day.bars, start, end)
	if len(window) == 0 {
		return nil
	}
	rec := rangeRecord(day.date, models.SessionOpeningRange, start, end, window)
	return []models.SessionRecord{rec}
}

// twelveHour computes the best-effort 12-hour overlay aggregates, anchored
// at a 06:00 offset. Overlay only: no status or broken classification.
func (c *Calculator) twelveHour(day dayBars) []models.SessionRecord {
	splits := []struct {
		start time.Time
		end   time.Time
	}{
		{localAt(day.date.AddDate(0, 0, -1), 18, 0, c.sched.loc), localAt(day.date, 6, 0, c.sched.loc)},
		// second half clipped to the 17:00 close so records stay inside
		// the trading-day span
		{localAt(day.date, 6, 0, c.sched.loc), TradingDayEnd(day.date)},
	}

	var records []models.SessionRecord
	for _, sp := range splits {
		window := SliceWindow(day.bars, sp.start, sp.end)
		if len(window) == 0 {
			continue
		}
		records = append(records, rangeRecord(day.date, models.SessionTwelveHour, sp.start, sp.end, window))
	}
	return records
}

// nearestBar finds the bar closest in time to the target instant.
func nearestBar(bars []models.Bar, at time.Time) (models.Bar, bool) {
	if len(bars) == 0 {
		return models.Bar{}, false
	}
	i := sort.Search(len(bars), func(i int) bool { return !bars[i].Timestamp.Before(at) })
	if i == 0 {
		return bars[0], true
	}
	if i == len(bars) {
		return bars[len(bars)-1], true
	}
	before := bars[i-1]
	after := bars[i]
	if at.Sub(before.Timestamp) <= after.Timestamp.Sub(at) {
		return before, true
	}
	return after, true
}
