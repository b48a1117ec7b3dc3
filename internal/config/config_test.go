package config

import (
	"strings"
	"testing"

	"github.com/kmcisaac/courtsched/internal/tournament"
)

const validConfig = `
daily_limits:
  per_type:
    singles: 2
    doubles: 1
  total: 3
recovery:
  minutes:
    singles: 60
    doubles: 30
  type_change_minutes: 45
average_minutes:
  singles: 90
  doubles: 60
requests:
  - participant_id: p1
    type: not_before
    time: "12:00"
`

func TestLoadFromBytes(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(validConfig))
	if err != nil {
		t.Fatalf("LoadFromBytes() error: %v", err)
	}

	t.Run("limits parsed", func(t *testing.T) {
		if got := cfg.DailyLimits.Limit(tournament.Singles); got != 2 {
			t.Errorf("singles limit = %d, want 2", got)
		}
		if cfg.DailyLimits.Total != 3 {
			t.Errorf("total limit = %d, want 3", cfg.DailyLimits.Total)
		}
	})

	t.Run("scheduling defaults applied", func(t *testing.T) {
		if cfg.Scheduling.MaxPasses != 10 {
			t.Errorf("MaxPasses = %d, want default 10", cfg.Scheduling.MaxPasses)
		}
		if cfg.Scheduling.MaxSlotRetries != 10 {
			t.Errorf("MaxSlotRetries = %d, want default 10", cfg.Scheduling.MaxSlotRetries)
		}
		if !cfg.Scheduling.IncludePotential {
			t.Error("IncludePotential should default to true")
		}
	})

	t.Run("average minutes with fallback", func(t *testing.T) {
		if got := cfg.AverageFor(tournament.Singles); got != 90 {
			t.Errorf("AverageFor(singles) = %d, want 90", got)
		}
		if got := cfg.AverageFor(tournament.Team); got != 90 {
			t.Errorf("AverageFor(team) = %d, want the 90 minute fallback", got)
		}
	})
}

func TestRecoveryMinutesFor(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(validConfig))
	if err != nil {
		t.Fatalf("LoadFromBytes() error: %v", err)
	}

	if got := cfg.Recovery.MinutesFor(tournament.Singles, tournament.Singles); got != 60 {
		t.Errorf("same-type recovery = %d, want 60", got)
	}
	if got := cfg.Recovery.MinutesFor(tournament.Singles, ""); got != 60 {
		t.Errorf("first-match recovery = %d, want 60", got)
	}
	if got := cfg.Recovery.MinutesFor(tournament.Doubles, tournament.Singles); got != 45 {
		t.Errorf("type-change recovery = %d, want 45", got)
	}
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "negative recovery",
			yaml: "recovery:\n  minutes:\n    singles: -1\n",
			want: "must not be negative",
		},
		{
			name: "zero average",
			yaml: "average_minutes:\n  singles: 0\n",
			want: "must be positive",
		},
		{
			name: "request missing participant",
			yaml: "requests:\n  - type: not_before\n    time: \"10:00\"\n",
			want: "participant_id is required",
		},
		{
			name: "not_before without time",
			yaml: "requests:\n  - participant_id: p1\n    type: not_before\n",
			want: "requires a time",
		},
		{
			name: "not_on without date",
			yaml: "requests:\n  - participant_id: p1\n    type: not_on\n",
			want: "requires a date",
		},
		{
			name: "unknown request type",
			yaml: "requests:\n  - participant_id: p1\n    type: sometime\n",
			want: "unknown request type",
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
