package sessions

import (
	"fmt"
	"time"
)

// Trading day D spans 18:00 local exchange time on calendar day D-1 through
// 17:00 on calendar day D. Everything in this package works on bars whose
// timestamps were already normalized to the exchange zone by the loader.

// rolloverMinute is the local time-of-day at which the next trading day
// begins, in minutes since midnight.
const rolloverMinute = 18 * 60

// closeMinute is the local time-of-day at which the trading day ends.
const closeMinute = 17 * 60

// TradingDate maps a local-time instant to the trading date it belongs to:
// bars at or after 18:00 belong to the next calendar day's session.
func TradingDate(ts time.Time) time.Time {
	year, month, day := ts.Date()
	d := time.Date(year, month, day, 0, 0, 0, 0, ts.Location())
	if minuteOfDay(ts) >= rolloverMinute {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// TradingDayStart returns 18:00 on the calendar day before the trading date.
func TradingDayStart(date time.Time) time.Time {
	return localAt(date.AddDate(0, 0, -1), 18, 0, date.Location())
}

// TradingDayEnd returns 17:00 on the trading date.
func TradingDayEnd(date time.Time) time.Time {
	return localAt(date, 17, 0, date.Location())
}

// minuteOfDay returns minutes since local midnight.
func minuteOfDay(ts time.Time) int {
	return ts.Hour()*60 + ts.Minute()
}

// localAt builds the instant for a nominal local wall time on the given
// calendar day. Around DST transitions a nominal time may not exist
// (spring forward) or may occur twice (fall back); time.Date shifts
// nonexistent times forward and picks one offset for ambiguous ones, so a
// boundary is always resolvable and per-bar assignment never fails.
func localAt(date time.Time, hour, min int, loc *time.Location) time.Time {
	year, month, day := date.Date()
	return time.Date(year, month, day, hour, min, 0, 0, loc)
}

// LoadZone resolves the configured IANA exchange zone.
func LoadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange timezone %q: %w", name, err)
	}
	return loc, nil
}
