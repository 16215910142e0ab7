package models

import (
	"time"
)

// Bar represents a single OHLCV bar. Timestamps are exchange-local; the
// loader converts from unix seconds before any session logic runs.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Validate validates a Bar
func (b *Bar) Validate() error {
	if b.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if b.Volume < 0 {
		return ErrInvalidVolume
	}
	return nil
}

// Session names for range windows.
const (
	SessionAsia   = "Asia"
	SessionLondon = "London"
	SessionNY1    = "NY1"
	SessionNY2    = "NY2"
)

// Names for derived point levels and secondary aggregates.
const (
	LevelMidnightOpen   = "MidnightOpen"
	LevelOpen730        = "Open730"
	LevelGlobexOpen     = "GlobexOpen"
	LevelPDH            = "PDH"
	LevelPDL            = "PDL"
	LevelPDMid          = "PDMid"
	LevelWeeklyClose    = "PWeeklyClose"
	SessionOpeningRange = "OpeningRange"
	SessionTwelveHour   = "TwelveHour"
)

// RangeSessions are the four named sessions that get status and broken
// classification, in chronological order within a trading day.
var RangeSessions = []string{SessionAsia, SessionLondon, SessionNY1, SessionNY2}

// RecordKind distinguishes range windows from point levels.
type RecordKind string

const (
	KindRange RecordKind = "range"
	KindPoint RecordKind = "point"
)

// Status classifies which side of a session range broke first during the
// monitoring window and whether the break reversed.
type Status string

const (
	StatusNone       Status = ""
	StatusLongTrue   Status = "Long True"
	StatusShortTrue  Status = "Short True"
	StatusLongFalse  Status = "Long False"
	StatusShortFalse Status = "Short False"
)

// Side identifies which session bound was crossed.
type Side string

const (
	SideNone Side = ""
	SideHigh Side = "High"
	SideLow  Side = "Low"
	SideBoth Side = "Both"
)

// SessionRecord is one session window or point level for one trading day.
// Records are created in a single pass per instrument and never mutated
// afterwards; a day with no bars in a window simply has no record.
type SessionRecord struct {
	Date    time.Time  `json:"date"` // trading date, midnight exchange-local
	Session string     `json:"session"`
	Kind    RecordKind `json:"kind"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"` // zero for point levels

	// Range window fields
	High float64 `json:"high,omitempty"`
	Low  float64 `json:"low,omitempty"`
	Mid  float64 `json:"mid,omitempty"`
	Open float64 `json:"open,omitempty"`

	// Point level field
	Price float64 `json:"price,omitempty"`

	// Status classification, set after the state machine runs
	Status        Status     `json:"status,omitempty"`
	TriggeredSide Side       `json:"triggered_side,omitempty"`
	StatusTime    *time.Time `json:"status_time,omitempty"`

	// Broken mid-level detection, independent of status
	Broken     bool       `json:"broken"`
	BrokenTime *time.Time `json:"broken_time,omitempty"`
}

// IsRange reports whether the record is a range-type session window.
func (r *SessionRecord) IsRange() bool {
	return r.Kind == KindRange
}

// Validate validates a SessionRecord
func (r *SessionRecord) Validate() error {
	if r.Session == "" {
		return ErrInvalidSession
	}
	if r.Date.IsZero() || r.StartTime.IsZero() {
		return ErrInvalidTimestamp
	}
	if r.Kind == KindRange && r.High < r.Low {
		return ErrInvalidBar
	}
	return nil
}

// CompositePathPoint is one minute bucket of the open-normalized composite
// path aggregated across a filtered set of trading days. Ephemeral, never
// persisted per day.
type CompositePathPoint struct {
	MinuteOffset int                `json:"minute_offset"`
	MedianHigh   float64            `json:"median_high_pct"`
	MedianLow    float64            `json:"median_low_pct"`
	HighBands    map[string]float64 `json:"high_bands,omitempty"` // "p25" -> pct
	LowBands     map[string]float64 `json:"low_bands,omitempty"`
	SampleCount  int                `json:"sample_count"`
}

// FilterClause names a session and a required status or broken value. A day
// matches only if the named session exists for that day and satisfies the
// clause.
type FilterClause struct {
	Session string  `json:"session"`
	Status  *Status `json:"status,omitempty"`
	Broken  *bool   `json:"broken,omitempty"`
}

// FilterQuery is the full day-filter request.
type FilterQuery struct {
	TargetSession string         `json:"target_session"` // named session or TargetWholeDay
	Clauses       []FilterClause `json:"clauses"`
	// Intraday restricts clause evaluation to sessions that start before
	// the target session, so partially elapsed days can still match.
	Intraday bool `json:"intraday,omitempty"`
}

// TargetWholeDay selects the full trading-day span instead of one session.
const TargetWholeDay = "day"
