package schedule

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Round names a slice of one draw round to be scheduled at a venue.
type Round struct {
	DrawID         string   `yaml:"draw_id"`
	StructureID    string   `yaml:"structure_id,omitempty"`
	RoundNumber    int      `yaml:"round_number"`
	AverageMinutes int      `yaml:"average_minutes,omitempty"`
	MatchUpIDs     []string `yaml:"matchup_ids"`
}

// VenueProfile lists the rounds to place at one venue on a date.
type VenueProfile struct {
	VenueID string  `yaml:"venue_id"`
	Rounds  []Round `yaml:"rounds"`
}

// DateProfile is one schedule date's worth of venue work.
type DateProfile struct {
	ScheduleDate string         `yaml:"schedule_date"`
	Venues       []VenueProfile `yaml:"venues"`
}

// Profile is the scheduling profile: an ordered list of dates, each with the
// venues and rounds to schedule. Produced by an external collaborator and
// consumed once per run.
type Profile struct {
	Dates []DateProfile `yaml:"dates"`
}

// LoadProfileFromBytes parses YAML bytes into a Profile and validates it.
func LoadProfileFromBytes(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing scheduling profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProfile reads and parses a YAML scheduling profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scheduling profile: %w", err)
	}
	return LoadProfileFromBytes(data)
}

// Validate checks the profile's structure. A malformed profile is a
// structural error: the run does not proceed.
func (p *Profile) Validate() error {
	if len(p.Dates) == 0 {
		return fmt.Errorf("scheduling profile has no dates")
	}
	for _, dp := range p.Dates {
		if _, err := time.Parse("2006-01-02", dp.ScheduleDate); err != nil {
			return fmt.Errorf("invalid schedule date %q: %w", dp.ScheduleDate, err)
		}
		if len(dp.Venues) == 0 {
			return fmt.Errorf("date %s has no venues", dp.ScheduleDate)
		}
		for _, vp := range dp.Venues {
			if vp.VenueID == "" {
				return fmt.Errorf("date %s: venue missing venue_id", dp.ScheduleDate)
			}
			for _, r := range vp.Rounds {
				if len(r.MatchUpIDs) == 0 {
					return fmt.Errorf("date %s venue %s: round %d of draw %q has no matchUps",
						dp.ScheduleDate, vp.VenueID, r.RoundNumber, r.DrawID)
				}
			}
		}
	}
	return nil
}
