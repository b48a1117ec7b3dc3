package excel

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kmcisaac/courtsched/internal/tournament"
	"github.com/kmcisaac/courtsched/internal/validator"
)

func testRecords() map[string]*tournament.Tournament {
	m1 := &tournament.MatchUp{
		MatchUpID:    "m1",
		TournamentID: "t1",
		Type:         tournament.Singles,
		Sides: []tournament.Side{
			{SideNumber: 1, ParticipantIDs: []string{"p1"}},
			{SideNumber: 2, ParticipantIDs: []string{"p2"}},
		},
		Schedule: tournament.Schedule{Date: "2026-09-12", Time: "10:00", VenueID: "v1"},
	}
	m2 := &tournament.MatchUp{
		MatchUpID:    "m2",
		TournamentID: "t1",
		Type:         tournament.Doubles,
		Sides: []tournament.Side{
			{SideNumber: 1, ParticipantIDs: []string{"p3", "p4"}},
			{SideNumber: 2, ParticipantIDs: []string{"p5", "p6"}},
		},
		Schedule: tournament.Schedule{Date: "2026-09-12", Time: "11:30", VenueID: "v1"},
	}
	unscheduled := &tournament.MatchUp{MatchUpID: "m3", TournamentID: "t1", Type: tournament.Singles}

	return map[string]*tournament.Tournament{
		"t1": {
			TournamentID: "t1",
			Venues:       []tournament.Venue{{VenueID: "v1", Name: "Center Court"}},
			MatchUps:     []*tournament.MatchUp{m1, m2, unscheduled},
		},
	}
}

func testAnalysis() *validator.Analysis {
	return &validator.Analysis{
		CourtIssues: map[string][]tournament.ScheduleIssue{
			"c1": {
				{MatchUpID: "m1", IssueType: tournament.IssueMatchUpOrder, Severity: tournament.SeverityError, RelatedMatchUpIDs: []string{"m2"}},
				{MatchUpID: "m2", IssueType: tournament.IssueCarryOver, Severity: tournament.SeverityWarning, RelatedMatchUpIDs: []string{"m1"}},
			},
		},
		RowIssues: map[int][]tournament.ScheduleIssue{},
	}
}

func TestGenerateWorkbook(t *testing.T) {
	f, err := Generate(testRecords(), testAnalysis())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	t.Run("has Schedule sheet", func(t *testing.T) {
		idx, err := f.GetSheetIndex("Schedule")
		if err != nil {
			t.Fatalf("GetSheetIndex error: %v", err)
		}
		if idx < 0 {
			t.Error("Schedule sheet not found")
		}
	})

	t.Run("schedule sheet has headers", func(t *testing.T) {
		val, _ := f.GetCellValue("Schedule", "A1")
		if val != "Date" {
			t.Errorf("A1 = %q, want Date", val)
		}
		val, _ = f.GetCellValue("Schedule", "C1")
		if val != "Center Court" {
			t.Errorf("C1 = %q, want Center Court", val)
		}
	})

	t.Run("schedule sheet has matchUp rows", func(t *testing.T) {
		rows, _ := f.GetRows("Schedule")
		found := false
		for _, row := range rows[1:] { // skip header
			if len(row) >= 3 && row[1] == "10:00" && row[2] == "m1: p1 vs p2" {
				found = true
				break
			}
		}
		if !found {
			t.Error("m1 at 10:00 not found in schedule sheet")
		}
	})

	t.Run("unscheduled matchUps are excluded", func(t *testing.T) {
		rows, _ := f.GetRows("Schedule")
		for _, row := range rows {
			for _, cell := range row {
				if cell == "m3" {
					t.Error("unscheduled m3 appeared in the schedule sheet")
				}
			}
		}
	})

	t.Run("findings sheet sorted by severity", func(t *testing.T) {
		rows, _ := f.GetRows("Findings")
		if len(rows) != 3 {
			t.Fatalf("findings sheet has %d rows, want header plus 2", len(rows))
		}
		if rows[1][0] != "error" || rows[1][2] != "m1" {
			t.Errorf("first finding = %v, want the error", rows[1])
		}
		if rows[2][0] != "warning" {
			t.Errorf("second finding = %v, want the warning", rows[2])
		}
	})

	t.Run("default Sheet1 removed", func(t *testing.T) {
		idx, _ := f.GetSheetIndex("Sheet1")
		if idx >= 0 {
			t.Error("Sheet1 should be removed")
		}
	})
}

func TestGenerateWithoutAnalysis(t *testing.T) {
	f, err := Generate(testRecords(), nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if idx, _ := f.GetSheetIndex("Findings"); idx >= 0 {
		t.Error("no analysis given, findings sheet should not exist")
	}
}

func TestWriteAndRead(t *testing.T) {
	f, err := Generate(testRecords(), testAnalysis())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	path := t.TempDir() + "/schedule.xlsx"
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}

	f2, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	defer f2.Close()

	val, _ := f2.GetCellValue("Schedule", "A1")
	if val != "Date" {
		t.Errorf("re-read A1 = %q, want Date", val)
	}
}
