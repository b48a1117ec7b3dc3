package tournament

import (
	"strings"
	"testing"
)

func TestSeverityOrdering(t *testing.T) {
	if !SeverityError.Exceeds(SeverityConflict) {
		t.Error("error should outrank conflict")
	}
	if !SeverityConflict.Exceeds(SeverityIssue) {
		t.Error("conflict should outrank issue")
	}
	if !SeverityIssue.Exceeds(SeverityWarning) {
		t.Error("issue should outrank warning")
	}
	if SeverityWarning.Exceeds(SeverityWarning) {
		t.Error("equal severities should not exceed each other")
	}
}

func TestScheduleAnnotate(t *testing.T) {
	t.Run("first annotation sticks", func(t *testing.T) {
		var s Schedule
		if !s.Annotate(ScheduleIssue{MatchUpID: "m1", IssueType: IssueMatchUpOrder, Severity: SeverityConflict}) {
			t.Fatal("first annotation should be written")
		}
		if s.Annotation == nil || s.Annotation.Severity != SeverityConflict {
			t.Fatalf("annotation = %+v", s.Annotation)
		}
	})

	t.Run("lower severity never downgrades", func(t *testing.T) {
		var s Schedule
		s.Annotate(ScheduleIssue{MatchUpID: "m1", IssueType: IssueMatchUpOrder, Severity: SeverityError})
		if s.Annotate(ScheduleIssue{MatchUpID: "m1", IssueType: IssueCarryOver, Severity: SeverityWarning}) {
			t.Error("warning should not replace an error")
		}
		if s.Annotation.IssueType != IssueMatchUpOrder {
			t.Errorf("annotation = %+v, want the original error", s.Annotation)
		}
	})

	t.Run("higher severity upgrades", func(t *testing.T) {
		var s Schedule
		s.Annotate(ScheduleIssue{MatchUpID: "m1", IssueType: IssueCarryOver, Severity: SeverityWarning})
		if !s.Annotate(ScheduleIssue{MatchUpID: "m1", IssueType: IssueMatchUpOrder, Severity: SeverityError}) {
			t.Error("error should replace a warning")
		}
		if s.Annotation.Severity != SeverityError {
			t.Errorf("annotation severity = %v, want error", s.Annotation.Severity)
		}
	})
}

const validDocument = `
tournaments:
  - tournament_id: t1
    name: City Open
    venues:
      - venue_id: v1
        courts:
          - court_id: c1
            venue_id: v1
    matchups:
      - matchup_id: m1
        draw_id: d1
        type: singles
        status: to-be-played
        winner_to: m2
        sides:
          - side_number: 1
            participant_ids: [p1]
          - side_number: 2
            participant_ids: [p2]
      - matchup_id: m2
        draw_id: d1
        type: singles
        status: to-be-played
`

func TestLoadFromBytes(t *testing.T) {
	doc, err := LoadFromBytes([]byte(validDocument))
	if err != nil {
		t.Fatalf("LoadFromBytes() error: %v", err)
	}

	records := doc.Records()
	tr, ok := records["t1"]
	if !ok {
		t.Fatal("tournament t1 missing from records")
	}
	if len(tr.MatchUps) != 2 {
		t.Fatalf("loaded %d matchUps, want 2", len(tr.MatchUps))
	}
	if m := tr.MatchUp("m1"); m == nil || m.WinnerTo != "m2" {
		t.Errorf("m1 = %+v, want winner_to m2", m)
	}
	if m := tr.MatchUp("m1"); m.TournamentID != "t1" {
		t.Errorf("m1 tournament id = %q, want inherited t1", m.TournamentID)
	}
	if v := tr.Venue("v1"); v == nil || len(v.Courts) != 1 {
		t.Errorf("venue v1 = %+v", v)
	}
}

func TestLoadDocumentErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "tournaments: []", "at least one tournament"},
		{
			"missing matchup id",
			"tournaments:\n  - tournament_id: t1\n    matchups:\n      - draw_id: d1\n        type: singles\n",
			"missing matchup_id",
		},
		{
			"missing type",
			"tournaments:\n  - tournament_id: t1\n    matchups:\n      - matchup_id: m1\n        draw_id: d1\n",
			"missing type",
		},
		{
			"dangling link",
			"tournaments:\n  - tournament_id: t1\n    matchups:\n      - matchup_id: m1\n        draw_id: d1\n        type: singles\n        winner_to: nowhere\n",
			"unknown matchUp",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCourtAvailability(t *testing.T) {
	v := Venue{
		VenueID: "v1",
		Courts: []Court{
			{CourtID: "c1", VenueID: "v1", Sessions: []CourtSession{{Date: "2026-09-12", StartTime: "09:00", EndTime: "17:00"}}},
			{CourtID: "c2", VenueID: "v1"}, // no sessions: always available
		},
	}

	courts := v.CourtsOn("2026-09-12")
	if len(courts) != 2 {
		t.Fatalf("CourtsOn matched %d courts, want 2", len(courts))
	}
	courts = v.CourtsOn("2026-09-13")
	if len(courts) != 1 || courts[0].CourtID != "c2" {
		t.Fatalf("CourtsOn(off day) = %v, want only the sessionless court", courts)
	}
}
