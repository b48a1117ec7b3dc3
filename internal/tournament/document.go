package tournament

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a YAML tournament bundle: the records and scheduling profile
// the CLI feeds into a run. Collaborators that own persistence produce the
// same shape in-process.
type Document struct {
	Tournaments []*Tournament `yaml:"tournaments"`
}

// LoadFromBytes parses YAML bytes into a Document and validates it.
func LoadFromBytes(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing tournament document: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFromFile reads and parses a YAML tournament document.
func LoadFromFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tournament document: %w", err)
	}
	return LoadFromBytes(data)
}

// Records returns the tournaments keyed by id.
func (d *Document) Records() map[string]*Tournament {
	records := make(map[string]*Tournament, len(d.Tournaments))
	for _, t := range d.Tournaments {
		records[t.TournamentID] = t
	}
	return records
}

// MatchUps returns every matchUp across all tournaments.
func (d *Document) MatchUps() []*MatchUp {
	var matchUps []*MatchUp
	for _, t := range d.Tournaments {
		matchUps = append(matchUps, t.MatchUps...)
	}
	return matchUps
}

func (d *Document) validate() error {
	if len(d.Tournaments) == 0 {
		return fmt.Errorf("at least one tournament is required")
	}

	seenTournament := make(map[string]bool)
	seenMatchUp := make(map[string]string)
	for _, t := range d.Tournaments {
		if t.TournamentID == "" {
			return fmt.Errorf("tournament missing tournament_id")
		}
		if seenTournament[t.TournamentID] {
			return fmt.Errorf("duplicate tournament id %q", t.TournamentID)
		}
		seenTournament[t.TournamentID] = true

		for _, m := range t.MatchUps {
			if m.MatchUpID == "" {
				return fmt.Errorf("tournament %q: matchUp missing matchup_id", t.TournamentID)
			}
			if prev, ok := seenMatchUp[m.MatchUpID]; ok {
				return fmt.Errorf("matchUp %q appears in both %q and %q", m.MatchUpID, prev, t.TournamentID)
			}
			seenMatchUp[m.MatchUpID] = t.TournamentID
			if m.Type == "" {
				return fmt.Errorf("matchUp %q missing type", m.MatchUpID)
			}
			if m.TournamentID == "" {
				m.TournamentID = t.TournamentID
			}
		}
	}

	// Advancement links must resolve within the document.
	for _, t := range d.Tournaments {
		for _, m := range t.MatchUps {
			for _, target := range []string{m.WinnerTo, m.LoserTo} {
				if target == "" {
					continue
				}
				if _, ok := seenMatchUp[target]; !ok {
					return fmt.Errorf("matchUp %q links to unknown matchUp %q", m.MatchUpID, target)
				}
			}
		}
	}

	return nil
}
