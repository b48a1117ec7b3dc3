// Package schedule assigns tournament matchUps to venue time slots under
// dependency, recovery, daily-limit, and request constraints, then commits
// the resulting times back onto the match records.
package schedule

import (
	"fmt"
	"sort"

	"github.com/kmcisaac/courtsched/internal/config"
	"github.com/kmcisaac/courtsched/internal/dependency"
	"github.com/kmcisaac/courtsched/internal/tournament"
)

// Options are the caller flags for a scheduling run.
type Options struct {
	// DryRun computes assignments without mutating match records, notes, or
	// any other external state.
	DryRun bool

	// ClearScheduleDates ignores (and, on a live run, clears) schedule times
	// already present on matchUps for the dates being processed.
	ClearScheduleDates bool

	// ScheduleCompletedMatchUps permits re-scheduling already-decided
	// matchUps. Used by test/mocking collaborators.
	ScheduleCompletedMatchUps bool

	// Sink, when set, receives the run's audit record instead of the
	// tournament-note fallback.
	Sink AuditSink
}

// RequestConflict reports a candidate rejected by a person request.
type RequestConflict struct {
	MatchUpID     string
	ParticipantID string
	RequestType   tournament.RequestType
}

// DeferredDependency reports a candidate deferred behind unresolved sources.
type DeferredDependency struct {
	MatchUpID     string
	UnresolvedIDs []string
}

// DateResult is the structured outcome for one schedule date. Scheduling
// shortfalls are expected under constraint pressure and are reported here,
// never raised as errors.
type DateResult struct {
	ScheduleDate               string
	ScheduledMatchUpIDs        []string
	NoTimeMatchUpIDs           []string
	OverLimitMatchUpIDs        []string
	RequestConflicts           []RequestConflict
	RecoveryDeferredMatchUpIDs []string
	DependencyDeferred         []DeferredDependency
	ScheduleTimesRemaining     []string
	SkippedScheduleTimes       []string
}

// RoundReport back-annotates how much of an input round was schedulable.
type RoundReport struct {
	DrawID            string
	StructureID       string
	RoundNumber       int
	ScheduledFraction float64
	FullySchedulable  bool
}

// Result is the output of a scheduling run.
type Result struct {
	Dates                []DateResult
	MatchUpScheduleTimes map[string]string // matchUpId -> time-of-day
	Rounds               []RoundReport
	Audit                *AuditRecord
}

// venueState is the greedy loop's per-venue working state within one date.
type venueState struct {
	venue    *tournament.Venue
	courts   int
	queue    *SlotQueue
	schedule []*tournament.MatchUp // matchUpsToSchedule, in profile order
	complete bool
}

// Run schedules the profile's matchUps onto venue slots. Structural input
// errors abort the run; scheduling shortfalls come back inside the Result.
func Run(records map[string]*tournament.Tournament, profile *Profile, cfg *config.Config, deps map[string]*dependency.Info, opts Options) (*Result, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no tournament records provided")
	}
	if profile == nil {
		return nil, fmt.Errorf("no scheduling profile provided")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no scheduling config provided")
	}

	byID := make(map[string]*tournament.MatchUp)
	owner := make(map[string]*tournament.Tournament)
	var allMatchUps []*tournament.MatchUp
	for _, t := range records {
		for _, m := range t.MatchUps {
			byID[m.MatchUpID] = m
			owner[m.MatchUpID] = t
			allMatchUps = append(allMatchUps, m)
		}
	}

	if deps == nil {
		var err error
		deps, err = dependency.Build(allMatchUps)
		if err != nil {
			return nil, fmt.Errorf("resolving dependencies: %w", err)
		}
	}

	result := &Result{MatchUpScheduleTimes: make(map[string]string)}
	var audits []DateAudit
	touched := make(map[string]bool)

	for i := range profile.Dates {
		dp := &profile.Dates[i]
		dr, da, err := runDate(records, dp, cfg, deps, byID, owner, opts, result.MatchUpScheduleTimes, touched)
		if err != nil {
			return nil, err
		}
		result.Dates = append(result.Dates, *dr)
		audits = append(audits, *da)
		result.Rounds = append(result.Rounds, roundReports(dp, byID, result.MatchUpScheduleTimes)...)
	}

	touchedIDs := make([]string, 0, len(touched))
	for id := range touched {
		touchedIDs = append(touchedIDs, id)
	}
	sort.Strings(touchedIDs)

	rec, err := newAuditRecord(profile, audits)
	if err != nil {
		return nil, err
	}
	result.Audit = rec

	// Audit delivery counts as externally visible mutation only through the
	// note fallback; an explicitly attached sink is the caller's own channel.
	if opts.Sink != nil {
		if err := opts.Sink.Emit(*rec); err != nil {
			return nil, fmt.Errorf("emitting audit record: %w", err)
		}
	} else if !opts.DryRun {
		sink := NewNoteSink(records, touchedIDs)
		if err := sink.Emit(*rec); err != nil {
			return nil, fmt.Errorf("persisting audit note: %w", err)
		}
	}

	return result, nil
}

func runDate(records map[string]*tournament.Tournament, dp *DateProfile, cfg *config.Config, deps map[string]*dependency.Info, byID map[string]*tournament.MatchUp, owner map[string]*tournament.Tournament, opts Options, times map[string]string, touched map[string]bool) (*DateResult, *DateAudit, error) {
	date := dp.ScheduleDate
	state := NewParticipantState()

	// Matches already committed on this date seed the recovery tracker and
	// consume slots, unless the caller asked to clear them.
	bookedByVenue := make(map[string][]string)
	if !opts.ClearScheduleDates {
		var prebooked []*tournament.MatchUp
		for _, m := range byID {
			if m.Schedule.Date == date && m.Schedule.Time != "" {
				prebooked = append(prebooked, m)
			}
		}
		sort.Slice(prebooked, func(i, j int) bool {
			if prebooked[i].Schedule.Time != prebooked[j].Schedule.Time {
				return prebooked[i].Schedule.Time < prebooked[j].Schedule.Time
			}
			return prebooked[i].MatchUpID < prebooked[j].MatchUpID
		})
		for _, m := range prebooked {
			bookedByVenue[m.Schedule.VenueID] = append(bookedByVenue[m.Schedule.VenueID], m.Schedule.Time)
			participants := m.SideParticipantIDs()
			if info, ok := deps[m.MatchUpID]; ok && len(info.ParticipantIDs) > 0 {
				participants = info.ParticipantIDs
			}
			average := cfg.AverageFor(m.Type)
			for _, id := range participants {
				recovery := cfg.Recovery.MinutesFor(m.Type, state.PriorType(id))
				if err := state.Advance([]string{id}, m.Schedule.Time, average, recovery); err != nil {
					return nil, nil, fmt.Errorf("date %s: seeding recovery for %s: %w", date, m.MatchUpID, err)
				}
			}
			state.BumpLimits(participants, m.Type)
		}
	} else if !opts.DryRun {
		for _, m := range byID {
			if m.Schedule.Date == date {
				m.Schedule = tournament.Schedule{}
			}
		}
	}

	inScope := make(map[string]bool)
	var venues []*venueState
	for vi := range dp.Venues {
		vp := &dp.Venues[vi]
		vs, err := newVenueState(records, vp, date, cfg, byID, bookedByVenue[vp.VenueID], times, opts)
		if err != nil {
			return nil, nil, err
		}
		for _, m := range vs.schedule {
			inScope[m.MatchUpID] = true
		}
		venues = append(venues, vs)
	}

	chk := &checker{
		cfg:       cfg,
		deps:      deps,
		state:     state,
		byID:      byID,
		date:      date,
		inScope:   inScope,
		assigned:  make(map[string]string),
		prebooked: !opts.ClearScheduleDates,
	}

	dr := &DateResult{ScheduleDate: date}
	overLimit := make(map[string]bool)
	recoveryDeferred := make(map[string]bool)
	depDeferred := make(map[string][]string)
	conflictSeen := make(map[RequestConflict]bool)
	assignedVenue := make(map[string]string)

	// Outer loop: passes over all venues until every venue reports complete
	// or the fail-safe cap is reached. The cap guarantees termination even
	// when the constraints can never be jointly satisfied.
	for pass := 0; pass < cfg.Scheduling.MaxPasses; pass++ {
		allComplete := true
		for _, vs := range venues {
			vs.complete = vs.queue.Empty() || len(vs.schedule) == 0
			if !vs.complete {
				allComplete = false
			}
		}
		if allComplete {
			break
		}

		for _, vs := range venues {
			if vs.complete {
				continue
			}
			placed := 0
			for placed < vs.courts && len(vs.schedule) > 0 {
				slot, ok := vs.queue.Pop()
				if !ok {
					break
				}

				committed := false
				for i, m := range vs.schedule {
					rej, ok := chk.check(m, slot.Time)
					if !ok {
						recordRejection(dr, rej, m, overLimit, recoveryDeferred, depDeferred, conflictSeen)
						continue
					}
					if err := chk.commit(m, slot.Time); err != nil {
						return nil, nil, fmt.Errorf("date %s: committing %s: %w", date, m.MatchUpID, err)
					}
					vs.schedule = append(vs.schedule[:i], vs.schedule[i+1:]...)
					times[m.MatchUpID] = slot.Time
					assignedVenue[m.MatchUpID] = vs.venue.VenueID
					placed++
					committed = true
					break
				}
				if !committed {
					vs.queue.Defer(slot, cfg.Scheduling.MaxSlotRetries)
				}
			}
			vs.queue.Recycle()
		}
	}

	// Commit stage: compose timestamps and write schedule fields back onto
	// the records unless this is a dry run. Matches are reported as
	// scheduled either way.
	for id, clock := range chk.assigned {
		m := byID[id]
		t := owner[id]
		if !opts.DryRun {
			m.Schedule.Date = date
			m.Schedule.Time = clock
			m.Schedule.VenueID = assignedVenue[id]
			m.Schedule.ScheduledAt = composeISO(date, clock)
		}
		touched[t.TournamentID] = true
		dr.ScheduledMatchUpIDs = append(dr.ScheduledMatchUpIDs, id)
	}
	sort.Strings(dr.ScheduledMatchUpIDs)

	for _, vs := range venues {
		for _, m := range vs.schedule {
			dr.NoTimeMatchUpIDs = append(dr.NoTimeMatchUpIDs, m.MatchUpID)
		}
		dr.ScheduleTimesRemaining = append(dr.ScheduleTimesRemaining, vs.queue.Remaining()...)
		dr.SkippedScheduleTimes = append(dr.SkippedScheduleTimes, vs.queue.Dropped()...)
	}
	sort.Strings(dr.NoTimeMatchUpIDs)
	sort.Strings(dr.ScheduleTimesRemaining)
	sort.Strings(dr.SkippedScheduleTimes)

	for id := range depDeferred {
		dr.DependencyDeferred = append(dr.DependencyDeferred, DeferredDependency{
			MatchUpID:     id,
			UnresolvedIDs: depDeferred[id],
		})
	}
	sort.Slice(dr.DependencyDeferred, func(i, j int) bool {
		return dr.DependencyDeferred[i].MatchUpID < dr.DependencyDeferred[j].MatchUpID
	})

	da := &DateAudit{
		ScheduleDate:        date,
		ScheduledMatchUpIDs: dr.ScheduledMatchUpIDs,
		NoTimeMatchUpIDs:    dr.NoTimeMatchUpIDs,
		OverLimitMatchUpIDs: dr.OverLimitMatchUpIDs,
		RequestConflicts:    len(dr.RequestConflicts),
	}
	return dr, da, nil
}

func recordRejection(dr *DateResult, rej rejection, m *tournament.MatchUp, overLimit, recoveryDeferred map[string]bool, depDeferred map[string][]string, conflictSeen map[RequestConflict]bool) {
	switch rej.reason {
	case rejectOverLimit:
		if !overLimit[m.MatchUpID] {
			overLimit[m.MatchUpID] = true
			dr.OverLimitMatchUpIDs = append(dr.OverLimitMatchUpIDs, m.MatchUpID)
		}
	case rejectUnmetDependency:
		depDeferred[m.MatchUpID] = rej.related
	case rejectInsufficientRecovery:
		if !recoveryDeferred[m.MatchUpID] {
			recoveryDeferred[m.MatchUpID] = true
			dr.RecoveryDeferredMatchUpIDs = append(dr.RecoveryDeferredMatchUpIDs, m.MatchUpID)
		}
	case rejectRequestConflict:
		rc := RequestConflict{
			MatchUpID:     m.MatchUpID,
			ParticipantID: rej.participantID,
			RequestType:   rej.requestType,
		}
		if !conflictSeen[rc] {
			conflictSeen[rc] = true
			dr.RequestConflicts = append(dr.RequestConflicts, rc)
		}
	}
}

func newVenueState(records map[string]*tournament.Tournament, vp *VenueProfile, date string, cfg *config.Config, byID map[string]*tournament.MatchUp, booked []string, times map[string]string, opts Options) (*venueState, error) {
	var venue *tournament.Venue
	for _, t := range records {
		if v := t.Venue(vp.VenueID); v != nil {
			venue = v
			break
		}
	}
	if venue == nil {
		return nil, fmt.Errorf("date %s: unknown venue %q", date, vp.VenueID)
	}

	average := 0
	var toSchedule []*tournament.MatchUp
	for _, r := range vp.Rounds {
		roundAverage := r.AverageMinutes
		for _, id := range r.MatchUpIDs {
			m, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("date %s venue %s: unknown matchUp %q", date, vp.VenueID, id)
			}
			if m.Status.Decided() && !opts.ScheduleCompletedMatchUps {
				continue
			}
			if _, ok := times[id]; ok {
				continue // committed by an earlier date of this run
			}
			if m.Schedule.Time != "" && !opts.ClearScheduleDates {
				continue // already committed; re-runs leave it untouched
			}
			toSchedule = append(toSchedule, m)
			if roundAverage == 0 {
				roundAverage = cfg.AverageFor(m.Type)
			}
		}
		if roundAverage > average {
			average = roundAverage
		}
	}

	courts := venue.CourtsOn(date)
	if opts.ClearScheduleDates {
		booked = nil
	}
	slots := GenerateSlots(venue, date, average, booked)

	return &venueState{
		venue:    venue,
		courts:   len(courts),
		queue:    NewSlotQueue(slots),
		schedule: toSchedule,
	}, nil
}

// roundReports computes, per input round, the fraction of its matchUps that
// ended up with a schedule time.
func roundReports(dp *DateProfile, byID map[string]*tournament.MatchUp, times map[string]string) []RoundReport {
	var reports []RoundReport
	for _, vp := range dp.Venues {
		for _, r := range vp.Rounds {
			scheduled := 0
			for _, id := range r.MatchUpIDs {
				if _, ok := times[id]; ok {
					scheduled++
					continue
				}
				if m, ok := byID[id]; ok && m.Schedule.Time != "" {
					scheduled++
				}
			}
			fraction := 0.0
			if len(r.MatchUpIDs) > 0 {
				fraction = float64(scheduled) / float64(len(r.MatchUpIDs))
			}
			reports = append(reports, RoundReport{
				DrawID:            r.DrawID,
				StructureID:       r.StructureID,
				RoundNumber:       r.RoundNumber,
				ScheduledFraction: fraction,
				FullySchedulable:  scheduled == len(r.MatchUpIDs),
			})
		}
	}
	return reports
}
