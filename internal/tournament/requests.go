package tournament

// RequestType classifies a person scheduling request.
type RequestType string

const (
	// RequestNotBefore asks that the person not play before a time of day.
	RequestNotBefore RequestType = "not_before"
	// RequestNotAfter asks that the person not start after a time of day.
	RequestNotAfter RequestType = "not_after"
	// RequestNotOn asks that the person not play on a date at all.
	RequestNotOn RequestType = "not_on"
)

// PersonRequest is an explicit avoidance/request rule for a participant.
// An empty Date applies the request to every schedule date.
type PersonRequest struct {
	ParticipantID string      `yaml:"participant_id"`
	Type          RequestType `yaml:"type"`
	Date          string      `yaml:"date,omitempty"`
	Time          string      `yaml:"time,omitempty"`
}

// AppliesOn reports whether the request is in force on the given date.
func (r *PersonRequest) AppliesOn(date string) bool {
	return r.Date == "" || r.Date == date
}
