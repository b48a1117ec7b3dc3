package excel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kmcisaac/courtsched/internal/tournament"
	"github.com/kmcisaac/courtsched/internal/validator"
)

// Generate creates a workbook with the committed schedule grid and, when an
// analysis is supplied, a findings sheet.
func Generate(records map[string]*tournament.Tournament, analysis *validator.Analysis) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeScheduleSheet(f, records); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}
	if analysis != nil {
		if err := writeFindingsSheet(f, analysis); err != nil {
			return nil, fmt.Errorf("writing findings sheet: %w", err)
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func scheduledMatchUps(records map[string]*tournament.Tournament) []*tournament.MatchUp {
	var matchUps []*tournament.MatchUp
	for _, t := range records {
		for _, m := range t.MatchUps {
			if m.Schedule.Date != "" && m.Schedule.Time != "" {
				matchUps = append(matchUps, m)
			}
		}
	}
	sort.Slice(matchUps, func(i, j int) bool {
		a, b := matchUps[i], matchUps[j]
		if a.Schedule.Date != b.Schedule.Date {
			return a.Schedule.Date < b.Schedule.Date
		}
		if a.Schedule.Time != b.Schedule.Time {
			return a.Schedule.Time < b.Schedule.Time
		}
		return a.MatchUpID < b.MatchUpID
	})
	return matchUps
}

func venueColumns(records map[string]*tournament.Tournament) []tournament.Venue {
	var venues []tournament.Venue
	for _, t := range records {
		venues = append(venues, t.Venues...)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i].VenueID < venues[j].VenueID })
	return venues
}

func matchUpCell(m *tournament.MatchUp) string {
	var sides []string
	for _, s := range m.Sides {
		if len(s.ParticipantIDs) > 0 {
			sides = append(sides, strings.Join(s.ParticipantIDs, "/"))
		}
	}
	if len(sides) == 0 {
		return m.MatchUpID
	}
	return fmt.Sprintf("%s: %s", m.MatchUpID, strings.Join(sides, " vs "))
}

func writeScheduleSheet(f *excelize.File, records map[string]*tournament.Tournament) error {
	sheet := "Schedule"
	f.NewSheet(sheet)

	venues := venueColumns(records)
	headers := []string{"Date", "Time"}
	for _, v := range venues {
		name := v.Name
		if name == "" {
			name = v.VenueID
		}
		headers = append(headers, name)
	}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		for i := range headers {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), headerStyle)
		}
	}

	venueCol := make(map[string]int)
	for i, v := range venues {
		venueCol[v.VenueID] = i + 3 // after Date, Time
	}

	type timeSlot struct {
		date string
		time string
	}
	cells := make(map[timeSlot]map[string][]string)
	var slots []timeSlot
	for _, m := range scheduledMatchUps(records) {
		ts := timeSlot{m.Schedule.Date, m.Schedule.Time}
		if cells[ts] == nil {
			cells[ts] = make(map[string][]string)
			slots = append(slots, ts)
		}
		cells[ts][m.Schedule.VenueID] = append(cells[ts][m.Schedule.VenueID], matchUpCell(m))
	}

	for i, ts := range slots {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), ts.date)
		f.SetCellValue(sheet, cellRef(2, row), ts.time)
		for venueID, entries := range cells[ts] {
			col, ok := venueCol[venueID]
			if !ok {
				continue
			}
			f.SetCellValue(sheet, cellRef(col, row), strings.Join(entries, "; "))
		}
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 10)
	for i := range venues {
		col := colLetter(i + 3)
		f.SetColWidth(sheet, col, col, 36)
	}

	return nil
}

func writeFindingsSheet(f *excelize.File, analysis *validator.Analysis) error {
	sheet := "Findings"
	f.NewSheet(sheet)

	headers := []string{"Severity", "Issue", "MatchUp", "Court", "Related"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#C00000"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		for i := range headers {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), headerStyle)
		}
	}

	type courtIssue struct {
		courtID string
		issue   tournament.ScheduleIssue
	}
	var issues []courtIssue
	for courtID, list := range analysis.CourtIssues {
		for _, issue := range list {
			issues = append(issues, courtIssue{courtID, issue})
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.issue.Severity != b.issue.Severity {
			return a.issue.Severity > b.issue.Severity
		}
		if a.courtID != b.courtID {
			return a.courtID < b.courtID
		}
		return a.issue.MatchUpID < b.issue.MatchUpID
	})

	for i, ci := range issues {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), ci.issue.Severity.String())
		f.SetCellValue(sheet, cellRef(2, row), ci.issue.IssueType)
		f.SetCellValue(sheet, cellRef(3, row), ci.issue.MatchUpID)
		f.SetCellValue(sheet, cellRef(4, row), ci.courtID)
		f.SetCellValue(sheet, cellRef(5, row), strings.Join(ci.issue.RelatedMatchUpIDs, ", "))
	}

	widths := map[string]float64{"A": 12, "B": 28, "C": 16, "D": 12, "E": 30}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}

	return nil
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
