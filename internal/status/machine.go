package status

import (
	"github.com/mohamedkhairy/session-analytics/internal/models"
)

// State is the break classification state for one session.
type State int

const (
	StateNeutral State = iota
	StateTriggeredHigh
	StateTriggeredLow
	StateTerminal
)

// step is the outcome of feeding one bar to the transition function.
// Changed is true when the classification (status/side/time) was updated.
type step struct {
	next    State
	status  models.Status
	side    models.Side
	changed bool
}

// transition is the pure state transition of the break classifier. Given
// the current state, one monitoring-window bar, and the session bounds, it
// returns the next state and any classification change. First reversal
// wins: TERMINAL never transitions again.
func transition(state State, bar *models.Bar, sessHigh, sessLow float64) step {
	switch state {
	case StateNeutral:
		brokeHigh := bar.High > sessHigh
		brokeLow := bar.Low < sessLow

		switch {
		case brokeHigh && brokeLow:
			// Outside bar: both sides exceeded within one bar. OHLC bars
			// do not record path order, so read direction off the open
			// relative to the bar's own midpoint: open below mid means
			// the bar moved up first.
			barMid := (bar.High + bar.Low) / 2
			if bar.Open < barMid {
				return step{next: StateTerminal, status: models.StatusLongFalse, side: models.SideBoth, changed: true}
			}
			return step{next: StateTerminal, status: models.StatusShortFalse, side: models.SideBoth, changed: true}
		case brokeHigh:
			return step{next: StateTriggeredHigh, status: models.StatusLongTrue, side: models.SideHigh, changed: true}
		case brokeLow:
			return step{next: StateTriggeredLow, status: models.StatusShortTrue, side: models.SideLow, changed: true}
		default:
			return step{next: StateNeutral}
		}

	case StateTriggeredHigh:
		if bar.Low < sessLow {
			return step{next: StateTerminal, status: models.StatusLongFalse, side: models.SideBoth, changed: true}
		}
		return step{next: StateTriggeredHigh}

	case StateTriggeredLow:
		if bar.High > sessHigh {
			return step{next: StateTerminal, status: models.StatusShortFalse, side: models.SideBoth, changed: true}
		}
		return step{next: StateTriggeredLow}

	default: // StateTerminal
		return step{next: StateTerminal}
	}
}

// Classify runs the state machine over the monitoring-window bars and
// writes status, triggered side and status time onto the record. Bars must
// be in time order; cost is linear in the window. Re-running on the same
// inputs yields the same result.
func Classify(rec *models.SessionRecord, window []models.Bar) {
	state := StateNeutral
	for i := range window {
		bar := &window[i]
		st := transition(state, bar, rec.High, rec.Low)
		if st.changed {
			rec.Status = st.status
			rec.TriggeredSide = st.side
			t := bar.Timestamp
			rec.StatusTime = &t
		}
		state = st.next
		if state == StateTerminal {
			return
		}
	}
}
