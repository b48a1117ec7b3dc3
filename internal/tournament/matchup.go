package tournament

import (
	"time"

	"github.com/google/uuid"
)

// MatchUpType classifies a contest.
type MatchUpType string

const (
	Singles MatchUpType = "singles"
	Doubles MatchUpType = "doubles"
	Team    MatchUpType = "team"
)

// Status is the lifecycle state of a matchUp. Only external collaborators
// move a matchUp between statuses; the scheduler reads them.
type Status string

const (
	ToBePlayed Status = "to-be-played"
	InProgress Status = "in-progress"
	Completed  Status = "completed"
	Bye        Status = "bye"
	Defaulted  Status = "defaulted"
	Walkover   Status = "walkover"
	Abandoned  Status = "abandoned"
)

// Decided reports whether the matchUp can no longer be scheduled normally.
func (s Status) Decided() bool {
	switch s {
	case Completed, Bye, Defaulted, Walkover, Abandoned:
		return true
	}
	return false
}

// Side is one side of a matchUp. ParticipantIDs are confirmed participants;
// a side fed by an undecided source matchUp has none yet.
type Side struct {
	SideNumber     int      `yaml:"side_number"`
	ParticipantIDs []string `yaml:"participant_ids"`
}

// Schedule is the mutable schedule sub-record of a matchUp. The scheduler's
// commit stage writes Date, Time, VenueID, and ScheduledAt; collaborators
// assign CourtID and CourtOrder when laying out the grid.
type Schedule struct {
	Date        string `yaml:"date,omitempty"`
	Time        string `yaml:"time,omitempty"`
	VenueID     string `yaml:"venue_id,omitempty"`
	CourtID     string `yaml:"court_id,omitempty"`
	CourtOrder  int    `yaml:"court_order,omitempty"`
	ScheduledAt string `yaml:"scheduled_at,omitempty"` // ISO timestamp composed at commit

	// Annotation is set by the grid analyzer: at most one finding per
	// analysis pass, first (highest-severity) writer wins.
	Annotation *ScheduleIssue `yaml:"annotation,omitempty"`
}

// MatchUp is a single contest within a draw.
type MatchUp struct {
	MatchUpID    string      `yaml:"matchup_id"`
	DrawID       string      `yaml:"draw_id"`
	TournamentID string      `yaml:"tournament_id"`
	CollectionID string      `yaml:"collection_id,omitempty"`
	StructureID  string      `yaml:"structure_id,omitempty"`
	RoundNumber  int         `yaml:"round_number,omitempty"`
	Type         MatchUpType `yaml:"type"`
	Status       Status      `yaml:"status"`
	Sides        []Side      `yaml:"sides,omitempty"`

	// Advancement links: the matchUp the winner/loser feeds into.
	WinnerTo string `yaml:"winner_to,omitempty"`
	LoserTo  string `yaml:"loser_to,omitempty"`

	// PositionLinks name source matchUps in other structures (consolation
	// feeds, team line-ups) whose outcome places a participant here.
	PositionLinks []string `yaml:"position_links,omitempty"`

	Schedule Schedule `yaml:"schedule,omitempty"`
}

// SideParticipantIDs returns the confirmed participants across all sides.
func (m *MatchUp) SideParticipantIDs() []string {
	var ids []string
	for _, s := range m.Sides {
		ids = append(ids, s.ParticipantIDs...)
	}
	return ids
}

// Court is a bookable playing surface at a venue.
type Court struct {
	CourtID  string         `yaml:"court_id"`
	VenueID  string         `yaml:"venue_id"`
	Sessions []CourtSession `yaml:"sessions,omitempty"`
}

// CourtSession is one dated availability window for a court.
type CourtSession struct {
	Date      string `yaml:"date"`
	StartTime string `yaml:"start_time"`
	EndTime   string `yaml:"end_time"`
}

// AvailableOn reports whether the court has a session on the given date.
func (c *Court) AvailableOn(date string) bool {
	for _, s := range c.Sessions {
		if s.Date == date {
			return true
		}
	}
	return false
}

// Venue groups courts under one location.
type Venue struct {
	VenueID string  `yaml:"venue_id"`
	Name    string  `yaml:"name,omitempty"`
	Courts  []Court `yaml:"courts"`
}

// CourtsOn returns the venue's courts with a session on the given date.
// Courts without any sessions are treated as always available.
func (v *Venue) CourtsOn(date string) []Court {
	var courts []Court
	for _, c := range v.Courts {
		if len(c.Sessions) == 0 || c.AvailableOn(date) {
			courts = append(courts, c)
		}
	}
	return courts
}

// Note is a timestamped annotation on a tournament record. The audit stage
// appends one per run when no subscriber sink is attached.
type Note struct {
	NoteID    string    `yaml:"note_id"`
	CreatedAt time.Time `yaml:"created_at"`
	Topic     string    `yaml:"topic"`
	Body      string    `yaml:"body"`
}

// NewNote creates a note with a fresh id.
func NewNote(topic, body string) Note {
	return Note{
		NoteID:    uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Topic:     topic,
		Body:      body,
	}
}

// Tournament is the aggregate the scheduler resolves draw ownership against.
type Tournament struct {
	TournamentID string     `yaml:"tournament_id"`
	Name         string     `yaml:"name,omitempty"`
	Venues       []Venue    `yaml:"venues,omitempty"`
	MatchUps     []*MatchUp `yaml:"matchups"`
	Notes        []Note     `yaml:"notes,omitempty"`
}

// MatchUp returns the matchUp with the given id, or nil.
func (t *Tournament) MatchUp(id string) *MatchUp {
	for _, m := range t.MatchUps {
		if m.MatchUpID == id {
			return m
		}
	}
	return nil
}

// Venue returns the venue with the given id, or nil.
func (t *Tournament) Venue(id string) *Venue {
	for i := range t.Venues {
		if t.Venues[i].VenueID == id {
			return &t.Venues[i]
		}
	}
	return nil
}

// AddNote appends a note to the tournament record.
func (t *Tournament) AddNote(n Note) {
	t.Notes = append(t.Notes, n)
}
