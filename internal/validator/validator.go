// Package validator analyzes a committed schedule grid for ordering errors,
// double-bookings, and participant conflicts. It consumes matchUps grouped
// into rows by courtOrder and annotates each with at most one finding.
package validator

import (
	"fmt"
	"sort"

	"github.com/kmcisaac/courtsched/internal/dependency"
	"github.com/kmcisaac/courtsched/internal/tournament"
)

// Options control the analysis depth.
type Options struct {
	// Deep extends the scan beyond adjacent rows: potential identity is
	// propagated across unresolved groupings, the gap scan is bounded by the
	// maximum dependency depth, every matchUp is checked forward against all
	// of its dependents, and absent position-linked sources are flagged.
	Deep bool
}

// Analysis is the analyzer's output: findings keyed by courtId and by row
// index, mirroring the annotations written onto the schedule sub-records.
type Analysis struct {
	CourtIssues map[string][]tournament.ScheduleIssue
	RowIssues   map[int][]tournament.ScheduleIssue
}

type analyzer struct {
	deps     map[string]*dependency.Info
	opts     Options
	byID     map[string]*tournament.MatchUp
	rows     map[int][]*tournament.MatchUp
	rowOf    map[string]int
	rowOrder []int // ascending courtOrder values present in the grid
	out      *Analysis
}

// Analyze runs the conflict grid analysis. The analyzer is a pure function of
// its inputs apart from the schedule annotations it writes; a malformed grid
// or missing dependency context is a structural error.
func Analyze(matchUps []*tournament.MatchUp, deps map[string]*dependency.Info, opts Options) (*Analysis, error) {
	if deps == nil {
		return nil, fmt.Errorf("dependency context is required")
	}
	if len(matchUps) == 0 {
		return nil, fmt.Errorf("grid has no matchUps")
	}

	a := &analyzer{
		deps:  deps,
		opts:  opts,
		byID:  make(map[string]*tournament.MatchUp, len(matchUps)),
		rows:  make(map[int][]*tournament.MatchUp),
		rowOf: make(map[string]int, len(matchUps)),
		out: &Analysis{
			CourtIssues: make(map[string][]tournament.ScheduleIssue),
			RowIssues:   make(map[int][]tournament.ScheduleIssue),
		},
	}

	for _, m := range matchUps {
		if m.Schedule.Date == "" || m.Schedule.CourtID == "" || m.Schedule.CourtOrder <= 0 {
			return nil, fmt.Errorf("matchUp %q is missing its schedule grid placement", m.MatchUpID)
		}
		a.byID[m.MatchUpID] = m
		order := m.Schedule.CourtOrder
		if len(a.rows[order]) == 0 {
			a.rowOrder = append(a.rowOrder, order)
		}
		a.rows[order] = append(a.rows[order], m)
		a.rowOf[m.MatchUpID] = order
	}
	sort.Ints(a.rowOrder)

	// Passes run in fixed severity order, error first, so the write-once
	// annotation rule can never downgrade an earlier finding.
	a.checkOrderingErrors()
	a.checkDoubleBooking()
	a.checkSameRowSources()
	a.checkRowParticipants()
	gapDepth := 2
	if opts.Deep {
		if d := dependency.MaxDepth(deps); d > gapDepth {
			gapDepth = d
		}
	}
	a.checkRoundGaps(gapDepth)
	a.checkAdjacentParticipants()
	a.checkCarryOver()
	if opts.Deep {
		a.checkForwardDependents()
		a.checkDistantParticipants()
		a.checkMissingSources()
	}

	return a.out, nil
}

// annotate applies the write-once severity rule: the finding is recorded and
// mirrored into the court/row issue lists only when it sticks. A finding that
// upgrades an earlier one replaces its mirror entries, keeping the lists in
// agreement with the matchUp's final annotation.
func (a *analyzer) annotate(m *tournament.MatchUp, issueType string, severity tournament.Severity, related []string) {
	issue := tournament.ScheduleIssue{
		MatchUpID:         m.MatchUpID,
		IssueType:         issueType,
		Severity:          severity,
		RelatedMatchUpIDs: related,
	}
	upgraded := m.Schedule.Annotation != nil
	if !m.Schedule.Annotate(issue) {
		return
	}
	if upgraded {
		courtID := m.Schedule.CourtID
		a.out.CourtIssues[courtID] = withoutMatchUp(a.out.CourtIssues[courtID], m.MatchUpID)
		row := a.rowOf[m.MatchUpID]
		a.out.RowIssues[row] = withoutMatchUp(a.out.RowIssues[row], m.MatchUpID)
	}
	a.out.CourtIssues[m.Schedule.CourtID] = append(a.out.CourtIssues[m.Schedule.CourtID], issue)
	a.out.RowIssues[a.rowOf[m.MatchUpID]] = append(a.out.RowIssues[a.rowOf[m.MatchUpID]], issue)
}

func withoutMatchUp(issues []tournament.ScheduleIssue, id string) []tournament.ScheduleIssue {
	kept := issues[:0]
	for _, issue := range issues {
		if issue.MatchUpID != id {
			kept = append(kept, issue)
		}
	}
	return kept
}

// gridSources returns m's direct source matchUps present in the grid.
func (a *analyzer) gridSources(m *tournament.MatchUp) []*tournament.MatchUp {
	info, ok := a.deps[m.MatchUpID]
	if !ok {
		return nil
	}
	var sources []*tournament.MatchUp
	for _, id := range info.SourceMatchUpIDs {
		if s, ok := a.byID[id]; ok {
			sources = append(sources, s)
		}
	}
	return sources
}

// checkOrderingErrors flags a source placed in a later row than its
// dependent: both matchUps get an ERROR.
func (a *analyzer) checkOrderingErrors() {
	for _, order := range a.rowOrder {
		for _, m := range a.rows[order] {
			for _, src := range a.gridSources(m) {
				if a.rowOf[src.MatchUpID] > order {
					a.annotate(m, tournament.IssueMatchUpOrder, tournament.SeverityError, []string{src.MatchUpID})
					a.annotate(src, tournament.IssueMatchUpOrder, tournament.SeverityError, []string{m.MatchUpID})
				}
			}
		}
	}
}

// checkDoubleBooking flags matchUps sharing a court and date with no
// distinguishing order.
func (a *analyzer) checkDoubleBooking() {
	type courtSlot struct {
		courtID string
		date    string
		order   int
	}
	booked := make(map[courtSlot][]*tournament.MatchUp)
	for _, order := range a.rowOrder {
		for _, m := range a.rows[order] {
			key := courtSlot{m.Schedule.CourtID, m.Schedule.Date, order}
			booked[key] = append(booked[key], m)
		}
	}
	for _, group := range booked {
		if len(group) < 2 {
			continue
		}
		for _, m := range group {
			var related []string
			for _, other := range group {
				if other.MatchUpID != m.MatchUpID {
					related = append(related, other.MatchUpID)
				}
			}
			a.annotate(m, tournament.IssueCourtDoubleBooking, tournament.SeverityConflict, related)
		}
	}
}

// checkSameRowSources flags a source scheduled in the same row as its
// dependent: the order is ambiguous, so both get a CONFLICT.
func (a *analyzer) checkSameRowSources() {
	for _, order := range a.rowOrder {
		for _, m := range a.rows[order] {
			for _, src := range a.gridSources(m) {
				if a.rowOf[src.MatchUpID] == order && src.MatchUpID != m.MatchUpID {
					a.annotate(m, tournament.IssueMatchUpOrder, tournament.SeverityConflict, []string{src.MatchUpID})
					a.annotate(src, tournament.IssueMatchUpOrder, tournament.SeverityConflict, []string{m.MatchUpID})
				}
			}
		}
	}
}

// participantsOf returns confirmed participants plus, in deep mode or when
// the resolver propagated them, potential participants.
func (a *analyzer) participantsOf(m *tournament.MatchUp) []string {
	if info, ok := a.deps[m.MatchUpID]; ok && len(info.ParticipantIDs) > 0 {
		return info.ParticipantIDs
	}
	return m.SideParticipantIDs()
}

// rowParticipants maps participant id -> matchUps in the row involving them.
func (a *analyzer) rowParticipants(order int) map[string][]*tournament.MatchUp {
	seen := make(map[string][]*tournament.MatchUp)
	for _, m := range a.rows[order] {
		for _, id := range a.participantsOf(m) {
			seen[id] = append(seen[id], m)
		}
	}
	return seen
}

// checkRowParticipants flags a participant appearing in two matchUps of the
// same row: same time, different court.
func (a *analyzer) checkRowParticipants() {
	for _, order := range a.rowOrder {
		for _, group := range a.rowParticipants(order) {
			if len(group) < 2 {
				continue
			}
			for _, m := range group {
				var related []string
				for _, other := range group {
					if other.MatchUpID != m.MatchUpID {
						related = append(related, other.MatchUpID)
					}
				}
				a.annotate(m, tournament.IssueParticipantOverlap, tournament.SeverityConflict, related)
			}
		}
	}
}

// checkRoundGaps flags dependencies separated by fewer rows than their
// computed round distance, scanning source groups up to maxDepth rounds back.
func (a *analyzer) checkRoundGaps(maxDepth int) {
	for _, order := range a.rowOrder {
		for _, m := range a.rows[order] {
			info, ok := a.deps[m.MatchUpID]
			if !ok {
				continue
			}
			for gi, group := range info.Sources {
				if gi >= maxDepth {
					break
				}
				distance := gi + 1
				for _, srcID := range group {
					src, ok := a.byID[srcID]
					if !ok {
						continue
					}
					srcRow := a.rowOf[srcID]
					if srcRow >= order {
						continue // ordering checks own this
					}
					if rowGap(a.rowOrder, srcRow, order) < distance {
						a.annotate(m, tournament.IssueInsufficientGap, tournament.SeverityIssue, []string{src.MatchUpID})
					}
				}
			}
		}
	}
}

// checkAdjacentParticipants flags a participant recurring in consecutive
// rows: back-to-back play on possibly different courts.
func (a *analyzer) checkAdjacentParticipants() {
	for i := 1; i < len(a.rowOrder); i++ {
		prev := a.rowParticipants(a.rowOrder[i-1])
		cur := a.rowParticipants(a.rowOrder[i])
		for id, group := range cur {
			prevGroup, ok := prev[id]
			if !ok {
				continue
			}
			for _, m := range group {
				var related []string
				for _, p := range prevGroup {
					related = append(related, p.MatchUpID)
				}
				a.annotate(m, tournament.IssueParticipantOverlap, tournament.SeverityWarning, related)
			}
		}
	}
}

// checkCarryOver flags a matchUp whose immediate predecessor sits in the
// previous row but on a different court with no followed-by relationship.
func (a *analyzer) checkCarryOver() {
	for i := 1; i < len(a.rowOrder); i++ {
		prevOrder := a.rowOrder[i-1]
		for _, m := range a.rows[a.rowOrder[i]] {
			for _, src := range a.gridSources(m) {
				if src.WinnerTo != m.MatchUpID && src.LoserTo != m.MatchUpID {
					continue
				}
				if a.rowOf[src.MatchUpID] != prevOrder {
					continue
				}
				if src.Schedule.CourtID != m.Schedule.CourtID {
					a.annotate(m, tournament.IssueCarryOver, tournament.SeverityWarning, []string{src.MatchUpID})
				}
			}
		}
	}
}

// checkForwardDependents walks from each matchUp to all of its transitive
// dependents, catching reversed or same-row placements the direct scan
// misses.
func (a *analyzer) checkForwardDependents() {
	for _, order := range a.rowOrder {
		for _, m := range a.rows[order] {
			for _, depID := range a.transitiveDependents(m.MatchUpID) {
				dep, ok := a.byID[depID]
				if !ok {
					continue
				}
				depRow := a.rowOf[depID]
				switch {
				case depRow < order:
					a.annotate(dep, tournament.IssueMatchUpOrder, tournament.SeverityError, []string{m.MatchUpID})
					a.annotate(m, tournament.IssueMatchUpOrder, tournament.SeverityError, []string{depID})
				case depRow == order:
					a.annotate(dep, tournament.IssueMatchUpOrder, tournament.SeverityConflict, []string{m.MatchUpID})
					a.annotate(m, tournament.IssueMatchUpOrder, tournament.SeverityConflict, []string{depID})
				}
			}
		}
	}
}

func (a *analyzer) transitiveDependents(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	frontier := []string{id}
	for len(frontier) > 0 {
		var next []string
		for _, cur := range frontier {
			info, ok := a.deps[cur]
			if !ok {
				continue
			}
			for _, dep := range info.DependentMatchUpIDs {
				if !seen[dep] {
					seen[dep] = true
					out = append(out, dep)
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}
	return out
}

// checkDistantParticipants extends the recurrence scan beyond adjacent rows,
// bounded by the deepest dependency chain observed in the grid.
func (a *analyzer) checkDistantParticipants() {
	depth := dependency.MaxDepth(a.deps)
	if depth < 2 {
		return
	}
	for i := range a.rowOrder {
		cur := a.rowParticipants(a.rowOrder[i])
		for span := 2; span <= depth && i+span < len(a.rowOrder); span++ {
			later := a.rowParticipants(a.rowOrder[i+span])
			for id, group := range later {
				if _, ok := cur[id]; !ok {
					continue
				}
				for _, m := range group {
					var related []string
					for _, p := range cur[id] {
						related = append(related, p.MatchUpID)
					}
					a.annotate(m, tournament.IssueParticipantOverlap, tournament.SeverityWarning, related)
				}
			}
		}
	}
}

// checkMissingSources flags matchUps whose position-linked sources are
// absent from the grid entirely: a cross-structure link the grid cannot
// order against.
func (a *analyzer) checkMissingSources() {
	for _, order := range a.rowOrder {
		for _, m := range a.rows[order] {
			info, ok := a.deps[m.MatchUpID]
			if !ok {
				continue
			}
			var missing []string
			for _, id := range info.PositionSources {
				if _, ok := a.byID[id]; !ok {
					missing = append(missing, id)
				}
			}
			if len(missing) > 0 {
				a.annotate(m, tournament.IssueMissingSource, tournament.SeverityWarning, missing)
			}
		}
	}
}

// rowGap counts grid rows strictly between two courtOrder values, plus one:
// the number of row steps separating them.
func rowGap(rowOrder []int, from, to int) int {
	fromIdx, toIdx := -1, -1
	for i, order := range rowOrder {
		if order == from {
			fromIdx = i
		}
		if order == to {
			toIdx = i
		}
	}
	if fromIdx < 0 || toIdx < 0 {
		return 0
	}
	return toIdx - fromIdx
}
