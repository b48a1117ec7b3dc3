package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"

	"github.com/kmcisaac/courtsched/internal/tournament"
)

// DateAudit summarizes one schedule date's outcome.
type DateAudit struct {
	ScheduleDate        string
	ScheduledMatchUpIDs []string
	NoTimeMatchUpIDs    []string
	OverLimitMatchUpIDs []string
	RequestConflicts    int
}

// AuditRecord is emitted once per scheduling run.
type AuditRecord struct {
	AuditID   string
	Timestamp time.Time
	Profile   Profile
	Dates     []DateAudit
}

// AuditSink receives the run's audit record. Callers that want streaming
// delivery attach a SubscriberSink; otherwise the record is persisted as a
// timestamped note on every tournament the run touched.
type AuditSink interface {
	Emit(rec AuditRecord) error
}

// SubscriberSink buffers audit records on a channel for subscribers.
type SubscriberSink struct {
	ch chan AuditRecord
}

// NewSubscriberSink creates a sink buffering up to size records.
func NewSubscriberSink(size int) *SubscriberSink {
	if size <= 0 {
		size = 1
	}
	return &SubscriberSink{ch: make(chan AuditRecord, size)}
}

// Emit pushes the record without blocking; a full buffer drops the record
// rather than stalling the scheduler.
func (s *SubscriberSink) Emit(rec AuditRecord) error {
	select {
	case s.ch <- rec:
		return nil
	default:
		return fmt.Errorf("audit subscriber buffer full")
	}
}

// Records exposes the delivery channel.
func (s *SubscriberSink) Records() <-chan AuditRecord {
	return s.ch
}

// NoteSink appends the audit record as a note on each touched tournament.
type NoteSink struct {
	records map[string]*tournament.Tournament
	touched []string
}

// NewNoteSink persists audit notes onto the given tournament records.
func NewNoteSink(records map[string]*tournament.Tournament, touched []string) *NoteSink {
	return &NoteSink{records: records, touched: touched}
}

func (s *NoteSink) Emit(rec AuditRecord) error {
	body := fmt.Sprintf("scheduling run %s at %s:", rec.AuditID, rec.Timestamp.Format(time.RFC3339))
	for _, d := range rec.Dates {
		body += fmt.Sprintf(" [%s scheduled=%d no-time=%d over-limit=%d conflicts=%d]",
			d.ScheduleDate, len(d.ScheduledMatchUpIDs), len(d.NoTimeMatchUpIDs),
			len(d.OverLimitMatchUpIDs), d.RequestConflicts)
	}
	for _, id := range s.touched {
		t, ok := s.records[id]
		if !ok {
			return fmt.Errorf("audit note for unknown tournament %q", id)
		}
		t.AddNote(tournament.NewNote("scheduling-audit", body))
	}
	return nil
}

// newAuditRecord snapshots the profile so later caller mutation cannot alias
// the audit trail.
func newAuditRecord(profile *Profile, dates []DateAudit) (*AuditRecord, error) {
	rec := &AuditRecord{
		AuditID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Dates:     dates,
	}
	if err := deepcopy.Copy(&rec.Profile, profile); err != nil {
		return nil, fmt.Errorf("snapshotting profile: %w", err)
	}
	return rec, nil
}
