package schedule

import (
	"testing"

	"github.com/kmcisaac/courtsched/internal/config"
	"github.com/kmcisaac/courtsched/internal/tournament"
)

func TestParticipantStateLimits(t *testing.T) {
	st := NewParticipantState()
	limits := config.DailyLimits{
		PerType: map[tournament.MatchUpType]int{tournament.Singles: 2},
		Total:   3,
	}

	st.BumpLimits([]string{"p1"}, tournament.Singles)
	if _, over := st.OverLimit([]string{"p1"}, tournament.Singles, limits); over {
		t.Fatal("one singles match should not hit a limit of 2")
	}

	st.BumpLimits([]string{"p1"}, tournament.Singles)
	if id, over := st.OverLimit([]string{"p1"}, tournament.Singles, limits); !over || id != "p1" {
		t.Fatalf("OverLimit = %q %v, want p1 at the singles cap", id, over)
	}

	// Doubles is uncapped per type but counts toward the total.
	if _, over := st.OverLimit([]string{"p1"}, tournament.Doubles, limits); over {
		t.Fatal("third match of a different type should still be allowed")
	}
	st.BumpLimits([]string{"p1"}, tournament.Doubles)
	if _, over := st.OverLimit([]string{"p1"}, tournament.Doubles, limits); !over {
		t.Fatal("fourth match should hit the total cap")
	}
}

func TestParticipantStateAdvance(t *testing.T) {
	st := NewParticipantState()

	if err := st.Advance([]string{"p1", "p2"}, "10:00", 90, 60); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	want := 12*60 + 30 // 10:00 + 90 + 60
	for _, id := range []string{"p1", "p2"} {
		if nb, ok := st.NotBefore(id); !ok || nb != want {
			t.Errorf("NotBefore(%s) = %d %v, want %d", id, nb, ok, want)
		}
	}

	t.Run("only moves forward", func(t *testing.T) {
		if err := st.Advance([]string{"p1"}, "09:00", 30, 0); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
		if nb, _ := st.NotBefore("p1"); nb != want {
			t.Errorf("NotBefore moved backward to %d", nb)
		}
	})

	t.Run("invalid time rejected", func(t *testing.T) {
		if err := st.Advance([]string{"p1"}, "nonsense", 30, 0); err == nil {
			t.Error("Advance with a bad clock should fail")
		}
	})
}

func TestParticipantStatePriorType(t *testing.T) {
	st := NewParticipantState()
	if got := st.PriorType("p1"); got != "" {
		t.Fatalf("PriorType before any match = %q", got)
	}
	st.BumpLimits([]string{"p1"}, tournament.Doubles)
	if got := st.PriorType("p1"); got != tournament.Doubles {
		t.Fatalf("PriorType = %q, want doubles", got)
	}
}
