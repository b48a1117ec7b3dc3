package schedule

import (
	"github.com/kmcisaac/courtsched/internal/config"
	"github.com/kmcisaac/courtsched/internal/tournament"
)

// ParticipantState tracks, per participant, matches played today and the
// earliest time they may next play. Created fresh per schedule date and
// discarded when the date is done.
type ParticipantState struct {
	typeCounts map[string]map[tournament.MatchUpType]int
	totals     map[string]int
	notBefore  map[string]int // minutes of day
	priorType  map[string]tournament.MatchUpType
}

func NewParticipantState() *ParticipantState {
	return &ParticipantState{
		typeCounts: make(map[string]map[tournament.MatchUpType]int),
		totals:     make(map[string]int),
		notBefore:  make(map[string]int),
		priorType:  make(map[string]tournament.MatchUpType),
	}
}

// BumpLimits increments the per-type and total daily counters.
func (st *ParticipantState) BumpLimits(ids []string, t tournament.MatchUpType) {
	for _, id := range ids {
		if st.typeCounts[id] == nil {
			st.typeCounts[id] = make(map[tournament.MatchUpType]int)
		}
		st.typeCounts[id][t]++
		st.totals[id]++
		st.priorType[id] = t
	}
}

// Advance moves every participant's notBeforeTime to scheduleTime plus the
// match duration plus recovery, keeping the later of the existing and new
// value: notBeforeTime only moves forward within a date.
func (st *ParticipantState) Advance(ids []string, scheduleTime string, averageMinutes, recoveryMinutes int) error {
	start, err := ParseClock(scheduleTime)
	if err != nil {
		return err
	}
	next := start + averageMinutes + recoveryMinutes
	for _, id := range ids {
		if next > st.notBefore[id] {
			st.notBefore[id] = next
		}
	}
	return nil
}

// NotBefore returns the participant's earliest next start in minutes of day.
func (st *ParticipantState) NotBefore(id string) (int, bool) {
	m, ok := st.notBefore[id]
	return m, ok
}

// PriorType returns the matchUpType of the participant's most recent match
// today, or "" when they have not played.
func (st *ParticipantState) PriorType(id string) tournament.MatchUpType {
	return st.priorType[id]
}

// TypeCount returns the participant's matches of type t today.
func (st *ParticipantState) TypeCount(id string, t tournament.MatchUpType) int {
	return st.typeCounts[id][t]
}

// Total returns the participant's total matches today.
func (st *ParticipantState) Total(id string) int {
	return st.totals[id]
}

// OverLimit returns the first participant already at or above a configured
// daily cap for a prospective match of type t.
func (st *ParticipantState) OverLimit(ids []string, t tournament.MatchUpType, limits config.DailyLimits) (string, bool) {
	typeCap := limits.Limit(t)
	for _, id := range ids {
		if typeCap > 0 && st.TypeCount(id, t) >= typeCap {
			return id, true
		}
		if limits.Total > 0 && st.Total(id) >= limits.Total {
			return id, true
		}
	}
	return "", false
}
