package sessions

import (
	"sort"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
)

// PreviousLevelCalculator derives lagged reference levels (PDH/PDL/PDMid
// and the prior weekly close) from finished per-day session aggregates.
type PreviousLevelCalculator struct {
	sched *Schedule
}

// NewPreviousLevelCalculator creates a previous-level calculator
func NewPreviousLevelCalculator(sched *Schedule) *PreviousLevelCalculator {
	return &PreviousLevelCalculator{sched: sched}
}

// dayAggregate is the full-day OHLC envelope over the four named sessions.
type dayAggregate struct {
	date time.Time
	high float64
	low  float64
	ok   bool
}

// Compute attaches previous-day and previous-week levels. The lag is a
// one-step join over the sorted distinct trading dates present in the
// records, so Friday's range carries over a weekend to Monday. The first
// day in the series gets no lagged records at all.
func (p *PreviousLevelCalculator) Compute(records []models.SessionRecord, bars []models.Bar) []models.SessionRecord {
	aggs := dailyAggregates(records)
	if len(aggs) == 0 {
		return nil
	}

	closes := dailyCloses(bars)

	var out []models.SessionRecord
	for i, agg := range aggs {
		start := TradingDayStart(agg.date)

		if i > 0 && aggs[i-1].ok {
			prev := aggs[i-1]
			mid := (prev.high + prev.low) / 2
			out = append(out,
				pointRecord(agg.date, models.LevelPDH, start, prev.high),
				pointRecord(agg.date, models.LevelPDL, start, prev.low),
				pointRecord(agg.date, models.LevelPDMid, start, mid),
			)
		}

		if close, ok := weeklyClose(closes, agg.date); ok {
			out = append(out, pointRecord(agg.date, models.LevelWeeklyClose, start, close))
		}
	}
	return out
}

// dailyAggregates folds the four named session ranges into one high/low
// envelope per trading date, in ascending date order.
func dailyAggregates(records []models.SessionRecord) []dayAggregate {
	named := make(map[string]bool, len(models.RangeSessions))
	for _, s := range models.RangeSessions {
		named[s] = true
	}

	byDate := make(map[time.Time]*dayAggregate)
	var order []time.Time
	for _, rec := range records {
		if !named[rec.Session] || rec.Kind != models.KindRange {
			continue
		}
		agg, exists := byDate[rec.Date]
		if !exists {
			agg = &dayAggregate{date: rec.Date, high: rec.High, low: rec.Low, ok: true}
			byDate[rec.Date] = agg
			order = append(order, rec.Date)
			continue
		}
		if rec.High > agg.high {
			agg.high = rec.High
		}
		if rec.Low < agg.low {
			agg.low = rec.Low
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })
	aggs := make([]dayAggregate, 0, len(order))
	for _, d := range order {
		aggs = append(aggs, *byDate[d])
	}
	return aggs
}

// dateClose is the closing price of the last bar of one trading date.
type dateClose struct {
	date  time.Time
	close float64
}

// dailyCloses extracts the last close per trading date from a sorted series.
func dailyCloses(bars []models.Bar) []dateClose {
	var closes []dateClose
	for _, b := range bars {
		d := TradingDate(b.Timestamp)
		if len(closes) > 0 && closes[len(closes)-1].date.Equal(d) {
			closes[len(closes)-1].close = b.Close
			continue
		}
		closes = append(closes, dateClose{date: d, close: b.Close})
	}
	return closes
}

// weeklyClose returns the close of the last bar at or before the most
// recent Friday strictly before the given trading date. Holiday Fridays
// fall back to the last session actually traded before them.
func weeklyClose(closes []dateClose, date time.Time) (float64, bool) {
	friday := mostRecentFridayBefore(date)

	i := sort.Search(len(closes), func(i int) bool { return closes[i].date.After(friday) })
	if i == 0 {
		return 0, false
	}
	return closes[i-1].close, true
}

// mostRecentFridayBefore walks back from date-1 to the previous Friday.
func mostRecentFridayBefore(date time.Time) time.Time {
	d := date.AddDate(0, 0, -1)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func pointRecord(date time.Time, name string, start time.Time, price float64) models.SessionRecord {
	return models.SessionRecord{
		Date:      date,
		Session:   name,
		Kind:      models.KindPoint,
		StartTime: start,
		Price:     price,
	}
}
