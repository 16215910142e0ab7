package models

import (
	"math"
	"time"
)

// Serialized record layout for handoff across the service boundary: a flat
// mapping with nulls substituted for NaN/Inf floats and absent fields.

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// sanitizeFloat replaces NaN and infinite values with nil so encoders never
// emit invalid JSON numbers.
func sanitizeFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func formatTime(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.Format(timeLayout)
}

// ToMap flattens the record for the service boundary.
func (r *SessionRecord) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"date":       r.Date.Format(dateLayout),
		"session":    r.Session,
		"start_time": r.StartTime.Format(timeLayout),
		"broken":     r.Broken,
	}

	if !r.EndTime.IsZero() {
		m["end_time"] = r.EndTime.Format(timeLayout)
	}

	if r.Kind == KindRange {
		m["high"] = sanitizeFloat(r.High)
		m["low"] = sanitizeFloat(r.Low)
		m["mid"] = sanitizeFloat(r.Mid)
		if r.Open != 0 {
			m["open"] = sanitizeFloat(r.Open)
		}
	} else {
		m["price"] = sanitizeFloat(r.Price)
	}

	if r.Status != StatusNone {
		m["status"] = string(r.Status)
	}
	if r.TriggeredSide != SideNone {
		m["triggered_side"] = string(r.TriggeredSide)
	}
	if st := formatTime(r.StatusTime); st != nil {
		m["status_time"] = st
	}
	if bt := formatTime(r.BrokenTime); bt != nil {
		m["broken_time"] = bt
	}

	return m
}

// ToMap flattens a composite path point, scrubbing non-finite percentiles.
func (p *CompositePathPoint) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"minute_offset":   p.MinuteOffset,
		"median_high_pct": sanitizeFloat(p.MedianHigh),
		"median_low_pct":  sanitizeFloat(p.MedianLow),
		"sample_count":    p.SampleCount,
	}
	for k, v := range p.HighBands {
		m["high_"+k] = sanitizeFloat(v)
	}
	for k, v := range p.LowBands {
		m["low_"+k] = sanitizeFloat(v)
	}
	return m
}
