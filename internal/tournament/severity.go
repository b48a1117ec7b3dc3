package tournament

// Severity orders grid-analysis findings. Higher values clobber lower ones;
// the annotate operation is set-if-higher-or-unset, so an Error can never be
// downgraded by a later Warning within one analysis pass.
type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityIssue
	SeverityConflict
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityConflict:
		return "conflict"
	case SeverityIssue:
		return "issue"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Exceeds reports whether s outranks o.
func (s Severity) Exceeds(o Severity) bool { return s > o }

// Issue types produced by the grid analyzer.
const (
	IssueMatchUpOrder       = "CONFLICT_MATCHUP_ORDER"
	IssueCourtDoubleBooking = "COURT_DOUBLE_BOOKING"
	IssueParticipantOverlap = "PARTICIPANT_OVERLAP"
	IssueInsufficientGap    = "INSUFFICIENT_ROUND_GAP"
	IssueCarryOver          = "COURT_CARRY_OVER"
	IssueMissingSource      = "MISSING_LINKED_SOURCE"
)

// ScheduleIssue is one grid-analysis finding attached to a matchUp.
type ScheduleIssue struct {
	MatchUpID         string   `yaml:"matchup_id"`
	IssueType         string   `yaml:"issue_type"`
	Severity          Severity `yaml:"severity"`
	RelatedMatchUpIDs []string `yaml:"related_matchup_ids,omitempty"`
}

// Annotate sets the schedule annotation if the new finding outranks the
// existing one or none is set. Returns true when the annotation was written.
func (sc *Schedule) Annotate(issue ScheduleIssue) bool {
	if sc.Annotation != nil && !issue.Severity.Exceeds(sc.Annotation.Severity) {
		return false
	}
	sc.Annotation = &issue
	return true
}
