package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kmcisaac/courtsched/internal/tournament"
)

// DailyLimits caps how many matches a participant may play per schedule date.
// A zero value means no limit for that key.
type DailyLimits struct {
	PerType map[tournament.MatchUpType]int `yaml:"per_type"`
	Total   int                            `yaml:"total"`
}

// Limit returns the per-type cap for t, or 0 when unlimited.
func (l DailyLimits) Limit(t tournament.MatchUpType) int {
	if l.PerType == nil {
		return 0
	}
	return l.PerType[t]
}

// Recovery defines minimum rest minutes after a match. TypeChangeMinutes
// applies when a participant's prior match was a different matchUpType.
type Recovery struct {
	Minutes           map[tournament.MatchUpType]int `yaml:"minutes"`
	TypeChangeMinutes int                            `yaml:"type_change_minutes"`
}

// MinutesFor returns the recovery minutes after a match of type t, given the
// participant's prior match type (empty when none).
func (r Recovery) MinutesFor(t, prior tournament.MatchUpType) int {
	if prior != "" && prior != t && r.TypeChangeMinutes > 0 {
		return r.TypeChangeMinutes
	}
	return r.Minutes[t]
}

// Scheduling holds the greedy loop's caps and conflict-mode flag.
type Scheduling struct {
	MaxPasses        int  `yaml:"max_passes"`
	MaxSlotRetries   int  `yaml:"max_slot_retries"`
	IncludePotential bool `yaml:"include_potential"`
}

type Config struct {
	DailyLimits    DailyLimits                    `yaml:"daily_limits"`
	Recovery       Recovery                       `yaml:"recovery"`
	AverageMinutes map[tournament.MatchUpType]int `yaml:"average_minutes"`
	Requests       []tournament.PersonRequest     `yaml:"requests"`
	Scheduling     Scheduling                     `yaml:"scheduling"`
}

const (
	defaultMaxPasses      = 10
	defaultMaxSlotRetries = 10
	defaultAverageMinutes = 90
)

// AverageFor returns the expected duration for a matchUp type.
func (c *Config) AverageFor(t tournament.MatchUpType) int {
	if m, ok := c.AverageMinutes[t]; ok && m > 0 {
		return m
	}
	return defaultAverageMinutes
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Config{
		Scheduling: Scheduling{
			MaxPasses:        defaultMaxPasses,
			MaxSlotRetries:   defaultMaxSlotRetries,
			IncludePotential: true,
		},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) validate() error {
	for t, m := range c.Recovery.Minutes {
		if m < 0 {
			return fmt.Errorf("recovery minutes for %q must not be negative", t)
		}
	}
	if c.Recovery.TypeChangeMinutes < 0 {
		return fmt.Errorf("type_change_minutes must not be negative")
	}
	for t, m := range c.AverageMinutes {
		if m <= 0 {
			return fmt.Errorf("average minutes for %q must be positive", t)
		}
	}
	for t, n := range c.DailyLimits.PerType {
		if n < 0 {
			return fmt.Errorf("daily limit for %q must not be negative", t)
		}
	}
	if c.DailyLimits.Total < 0 {
		return fmt.Errorf("total daily limit must not be negative")
	}
	if c.Scheduling.MaxPasses <= 0 {
		return fmt.Errorf("max_passes must be positive")
	}
	if c.Scheduling.MaxSlotRetries <= 0 {
		return fmt.Errorf("max_slot_retries must be positive")
	}

	for i, r := range c.Requests {
		if r.ParticipantID == "" {
			return fmt.Errorf("request %d: participant_id is required", i)
		}
		switch r.Type {
		case tournament.RequestNotBefore, tournament.RequestNotAfter:
			if r.Time == "" {
				return fmt.Errorf("request %d: %s requires a time", i, r.Type)
			}
		case tournament.RequestNotOn:
			if r.Date == "" {
				return fmt.Errorf("request %d: not_on requires a date", i)
			}
		default:
			return fmt.Errorf("request %d: unknown request type %q", i, r.Type)
		}
	}

	return nil
}
