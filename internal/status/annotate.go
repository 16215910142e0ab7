package status

import (
	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/mohamedkhairy/session-analytics/internal/sessions"
)

// Annotate runs the break classifier and the broken-mid detector over every
// range-type named session record, in place. Bars are the full sorted
// series for the instrument; each session reads only the slice between its
// own end and the relevant reset, so days are independent of each other.
func Annotate(bars []models.Bar, records []models.SessionRecord, sched *sessions.Schedule) {
	for i := range records {
		rec := &records[i]
		if !rec.IsRange() {
			continue
		}
		def, idx, ok := sched.Def(rec.Session)
		if !ok {
			// Point levels, opening range and overlay aggregates are not
			// classified.
			continue
		}

		monitorEnd := sched.NextStart(idx, rec.Date)
		monitor := sessions.SliceWindow(bars, rec.EndTime, monitorEnd)
		Classify(rec, monitor)

		if !def.HasBroken {
			continue
		}
		reset := brokenReset(monitorEnd)
		broken := sessions.SliceWindow(bars, monitorEnd, reset)
		DetectBroken(rec, broken)
	}
}
