// Package dependency derives, per matchUp, the source matches it depends on,
// the participants potentially or definitely involved, and the round distance
// between linked matches.
package dependency

import (
	"fmt"
	"sort"

	"github.com/kmcisaac/courtsched/internal/tournament"
)

// Info is the derived dependency record for one matchUp. Rebuilt on each
// scheduling invocation; read-only afterward.
type Info struct {
	MatchUpID string

	// SourceMatchUpIDs are the matches whose winner/loser or position link
	// feeds a side of this matchUp.
	SourceMatchUpIDs []string

	// DependentMatchUpIDs are the matches that depend on this one.
	DependentMatchUpIDs []string

	// ParticipantIDs holds confirmed side participants plus potential
	// participants propagated from undecided source matches.
	ParticipantIDs []string

	// PotentialIDs is the potential-only subset of ParticipantIDs.
	PotentialIDs []string

	// Sources groups source matchUp ids by rounds-back: index 0 is the
	// immediately preceding round, index 1 the round before that, and so on.
	Sources [][]string

	// PositionSources are source ids reached through cross-structure
	// position links rather than winner/loser advancement.
	PositionSources []string
}

// Build resolves dependencies for all matchUps in scope. Advancement links
// pointing outside the given set are a structural error.
func Build(matchUps []*tournament.MatchUp) (map[string]*Info, error) {
	byID := make(map[string]*tournament.MatchUp, len(matchUps))
	deps := make(map[string]*Info, len(matchUps))
	for _, m := range matchUps {
		if m.MatchUpID == "" {
			return nil, fmt.Errorf("matchUp without id cannot be resolved")
		}
		byID[m.MatchUpID] = m
		deps[m.MatchUpID] = &Info{MatchUpID: m.MatchUpID}
	}

	for _, m := range matchUps {
		for _, target := range []string{m.WinnerTo, m.LoserTo} {
			if target == "" {
				continue
			}
			t, ok := deps[target]
			if !ok {
				return nil, fmt.Errorf("matchUp %q advances to unknown matchUp %q", m.MatchUpID, target)
			}
			t.SourceMatchUpIDs = appendUnique(t.SourceMatchUpIDs, m.MatchUpID)
			deps[m.MatchUpID].DependentMatchUpIDs = appendUnique(deps[m.MatchUpID].DependentMatchUpIDs, target)
		}
		for _, link := range m.PositionLinks {
			src, ok := deps[link]
			if !ok {
				// Position links may cross structures absent from the working
				// set; the deep analyzer reports these, so keep the id.
				deps[m.MatchUpID].PositionSources = appendUnique(deps[m.MatchUpID].PositionSources, link)
				continue
			}
			deps[m.MatchUpID].PositionSources = appendUnique(deps[m.MatchUpID].PositionSources, link)
			deps[m.MatchUpID].SourceMatchUpIDs = appendUnique(deps[m.MatchUpID].SourceMatchUpIDs, link)
			src.DependentMatchUpIDs = appendUnique(src.DependentMatchUpIDs, m.MatchUpID)
		}
	}

	for _, info := range deps {
		info.Sources = buildSourceGroups(deps, info)
	}

	potential := make(map[string][]string, len(matchUps))
	for _, m := range matchUps {
		resolvePotential(m.MatchUpID, byID, deps, potential, make(map[string]bool))
	}
	for _, m := range matchUps {
		info := deps[m.MatchUpID]
		confirmed := m.SideParticipantIDs()
		info.ParticipantIDs = append([]string(nil), confirmed...)
		for _, id := range potential[m.MatchUpID] {
			if !contains(confirmed, id) {
				info.PotentialIDs = append(info.PotentialIDs, id)
				info.ParticipantIDs = append(info.ParticipantIDs, id)
			}
		}
		sort.Strings(info.PotentialIDs)
	}

	return deps, nil
}

// buildSourceGroups walks back one round at a time until no new sources appear.
func buildSourceGroups(deps map[string]*Info, info *Info) [][]string {
	var groups [][]string
	seen := map[string]bool{info.MatchUpID: true}
	frontier := info.SourceMatchUpIDs

	for len(frontier) > 0 {
		var group []string
		for _, id := range frontier {
			if !seen[id] {
				seen[id] = true
				group = append(group, id)
			}
		}
		if len(group) == 0 {
			break
		}
		sort.Strings(group)
		groups = append(groups, group)

		var next []string
		for _, id := range group {
			if src, ok := deps[id]; ok {
				next = append(next, src.SourceMatchUpIDs...)
			}
		}
		frontier = next
	}

	return groups
}

// resolvePotential collects participants who might reach a matchUp through
// undecided source matches. visiting guards against malformed link cycles.
func resolvePotential(id string, byID map[string]*tournament.MatchUp, deps map[string]*Info, memo map[string][]string, visiting map[string]bool) []string {
	if ids, ok := memo[id]; ok {
		return ids
	}
	if visiting[id] {
		return nil
	}
	visiting[id] = true
	defer delete(visiting, id)

	var ids []string
	for _, srcID := range deps[id].SourceMatchUpIDs {
		src, ok := byID[srcID]
		if !ok || src.Status.Decided() {
			continue
		}
		for _, p := range src.SideParticipantIDs() {
			ids = appendUnique(ids, p)
		}
		for _, p := range resolvePotential(srcID, byID, deps, memo, visiting) {
			ids = appendUnique(ids, p)
		}
	}
	memo[id] = ids
	return ids
}

// RoundDistance returns 1 plus the index of the round group containing b
// among a's sources, or 0 when the matches are unrelated.
func RoundDistance(deps map[string]*Info, a, b string) int {
	info, ok := deps[a]
	if !ok {
		return 0
	}
	for i, group := range info.Sources {
		if contains(group, b) {
			return i + 1
		}
	}
	return 0
}

// MaxDepth returns the greatest number of rounds-back groups observed across
// all matchUps. The deep grid scan is bounded by this.
func MaxDepth(deps map[string]*Info) int {
	depth := 0
	for _, info := range deps {
		if len(info.Sources) > depth {
			depth = len(info.Sources)
		}
	}
	return depth
}

func appendUnique(ids []string, id string) []string {
	if contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
