package schedule

import (
	"strings"
	"testing"
)

const validProfileYAML = `
dates:
  - schedule_date: "2026-09-12"
    venues:
      - venue_id: v1
        rounds:
          - draw_id: d1
            round_number: 1
            average_minutes: 75
            matchup_ids: [m1, m2]
          - draw_id: d1
            round_number: 2
            matchup_ids: [m3]
`

func TestLoadProfileFromBytes(t *testing.T) {
	p, err := LoadProfileFromBytes([]byte(validProfileYAML))
	if err != nil {
		t.Fatalf("LoadProfileFromBytes() error: %v", err)
	}
	if len(p.Dates) != 1 {
		t.Fatalf("got %d dates, want 1", len(p.Dates))
	}
	dp := p.Dates[0]
	if dp.ScheduleDate != "2026-09-12" {
		t.Errorf("ScheduleDate = %q", dp.ScheduleDate)
	}
	if len(dp.Venues) != 1 || dp.Venues[0].VenueID != "v1" {
		t.Fatalf("venues = %+v", dp.Venues)
	}
	rounds := dp.Venues[0].Rounds
	if len(rounds) != 2 {
		t.Fatalf("got %d rounds, want 2", len(rounds))
	}
	if rounds[0].AverageMinutes != 75 {
		t.Errorf("AverageMinutes = %d, want 75", rounds[0].AverageMinutes)
	}
	if len(rounds[1].MatchUpIDs) != 1 || rounds[1].MatchUpIDs[0] != "m3" {
		t.Errorf("round 2 matchUps = %v", rounds[1].MatchUpIDs)
	}
}

func TestProfileValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr string
	}{
		{
			name:    "no dates",
			mutate:  func(p *Profile) { p.Dates = nil },
			wantErr: "no dates",
		},
		{
			name:    "bad date format",
			mutate:  func(p *Profile) { p.Dates[0].ScheduleDate = "Sep 12 2026" },
			wantErr: "invalid schedule date",
		},
		{
			name:    "no venues",
			mutate:  func(p *Profile) { p.Dates[0].Venues = nil },
			wantErr: "has no venues",
		},
		{
			name:    "missing venue id",
			mutate:  func(p *Profile) { p.Dates[0].Venues[0].VenueID = "" },
			wantErr: "missing venue_id",
		},
		{
			name:    "empty round",
			mutate:  func(p *Profile) { p.Dates[0].Venues[0].Rounds[1].MatchUpIDs = nil },
			wantErr: "has no matchUps",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := LoadProfileFromBytes([]byte(validProfileYAML))
			if err != nil {
				t.Fatalf("fixture failed to load: %v", err)
			}
			tc.mutate(p)
			err = p.Validate()
			if err == nil {
				t.Fatal("Validate() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}
