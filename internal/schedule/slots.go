package schedule

import (
	"sort"

	"github.com/kmcisaac/courtsched/internal/tournament"
)

// Slot is one candidate (venue, time-of-day) placement. Attempts counts how
// many passes have skipped it.
type Slot struct {
	VenueID  string
	Time     string // "15:04"
	Attempts int
}

// Court hours used when a court carries no dated sessions.
const (
	defaultCourtStart = "08:00"
	defaultCourtEnd   = "20:00"
)

// GenerateSlots expands a venue's court hours on a date into an ordered list
// of candidate time slots, one per court per step of averageMinutes. Each
// court contributes steps within its own session window, so a venue with
// staggered court hours never advertises capacity no single court has. Times
// already consumed by booked matches are excluded, one court-slot per booked
// time.
func GenerateSlots(venue *tournament.Venue, date string, averageMinutes int, bookedTimes []string) []Slot {
	courts := venue.CourtsOn(date)
	if len(courts) == 0 || averageMinutes <= 0 {
		return nil
	}

	booked := make(map[string]int)
	for _, t := range bookedTimes {
		booked[t]++
	}

	counts := make(map[string]int)
	var order []string
	for i := range courts {
		start, end, ok := courtHours(&courts[i], date)
		if !ok {
			continue
		}
		for m := start; m+averageMinutes <= end; m += averageMinutes {
			clock := FormatClock(m)
			if counts[clock] == 0 {
				order = append(order, clock)
			}
			counts[clock]++
		}
	}
	sort.Strings(order)

	var slots []Slot
	for _, clock := range order {
		free := counts[clock] - booked[clock]
		for i := 0; i < free; i++ {
			slots = append(slots, Slot{VenueID: venue.VenueID, Time: clock})
		}
	}
	return slots
}

// courtHours returns the court's open window on the date in minutes of day.
// Courts without a dated session fall back to the default hours.
func courtHours(c *tournament.Court, date string) (int, int, bool) {
	cs, ce := defaultCourtStart, defaultCourtEnd
	for _, s := range c.Sessions {
		if s.Date == date {
			cs, ce = s.StartTime, s.EndTime
			break
		}
	}
	start, err := ParseClock(cs)
	if err != nil {
		return 0, 0, false
	}
	end, err := ParseClock(ce)
	if err != nil || end <= start {
		return 0, 0, false
	}
	return start, end, true
}

// SlotQueue is a bounded-retry queue of candidate slots for one venue. Slots
// that fail to place a match are deferred with an incremented attempt count;
// a slot exceeding the retry cap is dropped permanently, freeing capacity.
type SlotQueue struct {
	slots   []Slot
	skipped []Slot
	dropped []Slot
}

// NewSlotQueue wraps an already-ordered slot list.
func NewSlotQueue(slots []Slot) *SlotQueue {
	q := &SlotQueue{slots: make([]Slot, len(slots))}
	copy(q.slots, slots)
	return q
}

// Pop removes and returns the earliest slot.
func (q *SlotQueue) Pop() (Slot, bool) {
	if len(q.slots) == 0 {
		return Slot{}, false
	}
	s := q.slots[0]
	q.slots = q.slots[1:]
	return s, true
}

// Defer records a failed attempt on the slot. The slot is retained for the
// next pass unless its attempts exceed maxAttempts; the return value reports
// whether it was retained.
func (q *SlotQueue) Defer(s Slot, maxAttempts int) bool {
	s.Attempts++
	if s.Attempts > maxAttempts {
		q.dropped = append(q.dropped, s)
		return false
	}
	q.skipped = append(q.skipped, s)
	return true
}

// Recycle returns skipped slots to the queue, keeping time order.
func (q *SlotQueue) Recycle() {
	if len(q.skipped) == 0 {
		return
	}
	q.slots = append(q.slots, q.skipped...)
	q.skipped = nil
	sort.SliceStable(q.slots, func(i, j int) bool { return q.slots[i].Time < q.slots[j].Time })
}

// Empty reports whether no slots remain, pending or skipped.
func (q *SlotQueue) Empty() bool {
	return len(q.slots) == 0 && len(q.skipped) == 0
}

// Remaining returns the unused slot times sorted by time of day.
func (q *SlotQueue) Remaining() []string {
	times := make([]string, 0, len(q.slots)+len(q.skipped))
	for _, s := range q.slots {
		times = append(times, s.Time)
	}
	for _, s := range q.skipped {
		times = append(times, s.Time)
	}
	sort.Strings(times)
	return times
}

// Dropped returns the times of slots discarded after exceeding the retry cap.
func (q *SlotQueue) Dropped() []string {
	times := make([]string, 0, len(q.dropped))
	for _, s := range q.dropped {
		times = append(times, s.Time)
	}
	sort.Strings(times)
	return times
}
