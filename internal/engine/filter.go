package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/models"
)

// dayRecords indexes one trading day's named session records by session.
type dayRecords map[string]*models.SessionRecord

// FilterDays returns the trading dates whose records satisfy every clause
// of the query. Matching is a pure predicate pass: a day qualifies only if
// each named session exists for that day and has the required status or
// broken value, and the target window exists on the day. Unknown session
// names and empty clauses are rejected outright; no best-effort matching.
func (e *Engine) FilterDays(records []models.SessionRecord, query models.FilterQuery) ([]time.Time, error) {
	if err := e.validateQuery(query); err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]dayRecords)
	var order []time.Time
	for i := range records {
		rec := &records[i]
		if _, _, ok := e.sched.Def(rec.Session); !ok {
			continue
		}
		day, exists := byDay[rec.Date]
		if !exists {
			day = make(dayRecords)
			byDay[rec.Date] = day
			order = append(order, rec.Date)
		}
		day[rec.Session] = rec
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	var matched []time.Time
	for _, date := range order {
		if e.dayMatches(byDay[date], query) {
			matched = append(matched, date)
		}
	}
	return matched, nil
}

func (e *Engine) validateQuery(query models.FilterQuery) error {
	if query.TargetSession != models.TargetWholeDay {
		if _, _, ok := e.sched.Def(query.TargetSession); !ok {
			return fmt.Errorf("%w: %q", models.ErrUnknownSession, query.TargetSession)
		}
	}
	for _, clause := range query.Clauses {
		if _, _, ok := e.sched.Def(clause.Session); !ok {
			return fmt.Errorf("%w: %q", models.ErrUnknownSession, clause.Session)
		}
		if clause.Status == nil && clause.Broken == nil {
			return fmt.Errorf("%w: clause for %q sets neither status nor broken", models.ErrInvalidFilter, clause.Session)
		}
	}
	return nil
}

func (e *Engine) dayMatches(day dayRecords, query models.FilterQuery) bool {
	// The target window itself must exist on the day, unless the whole
	// trading-day span was requested.
	if query.TargetSession != models.TargetWholeDay {
		if _, ok := day[query.TargetSession]; !ok {
			return false
		}
	}

	for _, clause := range query.Clauses {
		if query.Intraday && !e.startsBefore(clause.Session, query.TargetSession) {
			// Partial-day matching: sessions at or after the target have
			// not completed yet, so their clauses are not evaluated.
			continue
		}
		rec, ok := day[clause.Session]
		if !ok {
			return false
		}
		if clause.Status != nil && rec.Status != *clause.Status {
			return false
		}
		if clause.Broken != nil && rec.Broken != *clause.Broken {
			return false
		}
	}
	return true
}

// startsBefore reports whether session a is scheduled before session b
// within a trading day. The whole-day target keeps every clause active.
func (e *Engine) startsBefore(a, b string) bool {
	if b == models.TargetWholeDay {
		return true
	}
	_, ai, _ := e.sched.Def(a)
	_, bi, _ := e.sched.Def(b)
	return ai < bi
}
