package schedule

import (
	"github.com/kmcisaac/courtsched/internal/config"
	"github.com/kmcisaac/courtsched/internal/dependency"
	"github.com/kmcisaac/courtsched/internal/tournament"
)

// rejectionReason categorizes why a slot was rejected for a matchUp.
type rejectionReason int

const (
	rejectOverLimit rejectionReason = iota
	rejectScheduledDependent
	rejectUnmetDependency
	rejectInsufficientRecovery
	rejectRequestConflict
)

// rejection carries the failing check plus the ids that explain it:
// unresolved source matchUps for a dependency deferral, the participant and
// request for a request conflict.
type rejection struct {
	reason        rejectionReason
	related       []string
	participantID string
	requestType   tournament.RequestType
}

// checker is the constraint ensemble for one schedule date. The five checks
// run in fixed order against a (candidate, prospective time) pair; the first
// failure short-circuits.
type checker struct {
	cfg       *config.Config
	deps      map[string]*dependency.Info
	state     *ParticipantState
	byID      map[string]*tournament.MatchUp
	date      string
	inScope   map[string]bool   // matchUpIds considered for this date
	assigned  map[string]string // matchUpId -> scheduleTime committed this run
	prebooked bool              // honor times committed by earlier runs
}

// prebookedTime returns the time already committed to the matchUp on this
// date by an earlier run, when prebooked times are being honored.
func (c *checker) prebookedTime(id string) (string, bool) {
	if !c.prebooked {
		return "", false
	}
	m, ok := c.byID[id]
	if !ok || m.Schedule.Date != c.date || m.Schedule.Time == "" {
		return "", false
	}
	return m.Schedule.Time, true
}

func (c *checker) relevantParticipants(m *tournament.MatchUp) []string {
	if info, ok := c.deps[m.MatchUpID]; ok && len(info.ParticipantIDs) > 0 {
		return info.ParticipantIDs
	}
	return m.SideParticipantIDs()
}

// check runs the ensemble without side effects.
func (c *checker) check(m *tournament.MatchUp, slotTime string) (rejection, bool) {
	participants := c.relevantParticipants(m)

	// 1. Daily limit
	if id, over := c.state.OverLimit(participants, m.Type, c.cfg.DailyLimits); over {
		return rejection{reason: rejectOverLimit, participantID: id}, false
	}

	// 2. A dependent already holds an earlier-or-equal time, whether committed
	// this run or prebooked on the date: placing the candidate now would
	// reverse the order.
	if info, ok := c.deps[m.MatchUpID]; ok {
		for _, dep := range info.DependentMatchUpIDs {
			if t, ok := c.assigned[dep]; ok && t <= slotTime {
				return rejection{reason: rejectScheduledDependent, related: []string{dep}}, false
			}
			if t, ok := c.prebookedTime(dep); ok && t <= slotTime {
				return rejection{reason: rejectScheduledDependent, related: []string{dep}}, false
			}
		}

		// 3. Unmet dependency: a source counts as resolved only once it holds
		// a time strictly before the prospective slot. An equal time would tie
		// source and dependent on a multi-court venue.
		var unresolved []string
		for _, src := range info.SourceMatchUpIDs {
			if sm, ok := c.byID[src]; ok && sm.Status.Decided() {
				continue
			}
			if t, ok := c.assigned[src]; ok {
				if t >= slotTime {
					unresolved = append(unresolved, src)
				}
				continue
			}
			if t, ok := c.prebookedTime(src); ok {
				if t >= slotTime {
					unresolved = append(unresolved, src)
				}
				continue
			}
			if c.inScope[src] {
				unresolved = append(unresolved, src)
			}
		}
		if len(unresolved) > 0 {
			return rejection{reason: rejectUnmetDependency, related: unresolved}, false
		}
	}

	// 4. Insufficient recovery
	slotMinutes, err := ParseClock(slotTime)
	if err == nil {
		for _, id := range participants {
			if nb, ok := c.state.NotBefore(id); ok && nb > slotMinutes {
				return rejection{reason: rejectInsufficientRecovery, participantID: id}, false
			}
		}
	}

	// 5. Request conflict
	if rej, conflicted := c.checkRequests(m, slotTime, participants); conflicted {
		return rej, false
	}

	return rejection{}, true
}

// checkRequests applies person scheduling requests. Potential participants
// are included when the conservative conflict mode is on.
func (c *checker) checkRequests(m *tournament.MatchUp, slotTime string, participants []string) (rejection, bool) {
	confirmed := make(map[string]bool)
	for _, id := range m.SideParticipantIDs() {
		confirmed[id] = true
	}

	for i := range c.cfg.Requests {
		r := &c.cfg.Requests[i]
		if !r.AppliesOn(c.date) {
			continue
		}
		involved := false
		for _, id := range participants {
			if id != r.ParticipantID {
				continue
			}
			if confirmed[id] || c.cfg.Scheduling.IncludePotential {
				involved = true
			}
			break
		}
		if !involved {
			continue
		}

		violated := false
		switch r.Type {
		case tournament.RequestNotBefore:
			violated = slotTime < r.Time
		case tournament.RequestNotAfter:
			violated = slotTime > r.Time
		case tournament.RequestNotOn:
			violated = true
		}
		if violated {
			return rejection{
				reason:        rejectRequestConflict,
				participantID: r.ParticipantID,
				requestType:   r.Type,
			}, true
		}
	}
	return rejection{}, false
}

// commit applies the ensemble's side effects after all five checks pass:
// bump daily counters and advance recovery for every relevant participant.
func (c *checker) commit(m *tournament.MatchUp, slotTime string) error {
	participants := c.relevantParticipants(m)

	average := c.cfg.AverageFor(m.Type)

	// Recovery is per participant: a type change can lengthen it.
	for _, id := range participants {
		recovery := c.cfg.Recovery.MinutesFor(m.Type, c.state.PriorType(id))
		if err := c.state.Advance([]string{id}, slotTime, average, recovery); err != nil {
			return err
		}
	}
	c.state.BumpLimits(participants, m.Type)
	c.assigned[m.MatchUpID] = slotTime
	return nil
}
