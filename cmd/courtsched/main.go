package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kmcisaac/courtsched/internal/config"
	"github.com/kmcisaac/courtsched/internal/dependency"
	"github.com/kmcisaac/courtsched/internal/excel"
	"github.com/kmcisaac/courtsched/internal/schedule"
	"github.com/kmcisaac/courtsched/internal/tournament"
	"github.com/kmcisaac/courtsched/internal/validator"
)

const defaultConfigFile = "config.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "courtsched",
		Short: "Tournament match scheduler and schedule grid analyzer",
	}

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	var (
		tournamentFile string
		profileFile    string
		outputFile     string
		dryRun         bool
		clearDates     bool
	)
	scheduleCmd := &cobra.Command{
		Use:          "schedule",
		Short:        "Schedule a tournament's matchUps onto venue time slots",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runSchedule(configPath, tournamentFile, profileFile, outputFile, dryRun, clearDates)
		},
	}
	scheduleCmd.Flags().StringVarP(&tournamentFile, "tournament", "t", "", "Path to the tournament document (required)")
	scheduleCmd.Flags().StringVarP(&profileFile, "profile", "p", "", "Path to the scheduling profile (required)")
	scheduleCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Optional Excel output for the committed grid")
	scheduleCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute assignments without mutating records")
	scheduleCmd.Flags().BoolVar(&clearDates, "clear", false, "Clear existing schedule times on the profile's dates")
	scheduleCmd.MarkFlagRequired("tournament")
	scheduleCmd.MarkFlagRequired("profile")

	var (
		analyzeFile string
		deep        bool
	)
	analyzeCmd := &cobra.Command{
		Use:          "analyze",
		Short:        "Analyze a committed schedule grid for conflicts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(analyzeFile, deep)
		},
	}
	analyzeCmd.Flags().StringVarP(&analyzeFile, "tournament", "t", "", "Path to the tournament document (required)")
	analyzeCmd.Flags().BoolVar(&deep, "deep", false, "Propagate potential identity and scan beyond adjacent rows")
	analyzeCmd.MarkFlagRequired("tournament")

	rootCmd.AddCommand(initCmd, scheduleCmd, analyzeCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Scheduling Policy
# =================
# Limits, recovery, and request rules applied to every scheduling run.

# Daily limits cap matches per participant per schedule date. Omit a key for
# no limit.
daily_limits:
  per_type:
    singles: 2
    doubles: 1
  total: 3

# Recovery defines minimum rest minutes after a match ends.
# type_change_minutes applies when the prior match was a different type.
recovery:
  minutes:
    singles: 60
    doubles: 30
    team: 60
  type_change_minutes: 60

# Expected match durations, used for slot sizing and recovery arithmetic.
average_minutes:
  singles: 90
  doubles: 60
  team: 120

# Person requests are explicit avoidance rules. Types:
#   not_before  - do not start before the given time
#   not_after   - do not start after the given time
#   not_on      - do not play on the given date
# Omitting date applies the request to every date.
requests: []
#  - participant_id: p1
#    type: not_before
#    time: "12:00"

scheduling:
  max_passes: 10        # fail-safe cap on convergence passes
  max_slot_retries: 10  # slot attempts before it is dropped
  include_potential: true
`

func runSchedule(configPath, tournamentPath, profilePath, outputPath string, dryRun, clearDates bool) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	doc, err := tournament.LoadFromFile(tournamentPath)
	if err != nil {
		return fmt.Errorf("loading tournament: %w", err)
	}

	profile, err := schedule.LoadProfile(profilePath)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	records := doc.Records()
	result, err := schedule.Run(records, profile, cfg, nil, schedule.Options{
		DryRun:             dryRun,
		ClearScheduleDates: clearDates,
	})
	if err != nil {
		return fmt.Errorf("scheduling: %w", err)
	}

	for _, dr := range result.Dates {
		fmt.Printf("%s: ✓ %d scheduled", dr.ScheduleDate, len(dr.ScheduledMatchUpIDs))
		if n := len(dr.NoTimeMatchUpIDs); n > 0 {
			fmt.Printf(", ⚠ %d without a time", n)
		}
		if n := len(dr.OverLimitMatchUpIDs); n > 0 {
			fmt.Printf(", %d over limit", n)
		}
		if n := len(dr.RequestConflicts); n > 0 {
			fmt.Printf(", %d request conflicts", n)
		}
		fmt.Println()
		if len(dr.ScheduleTimesRemaining) > 0 {
			fmt.Printf("  unused slots: %v\n", dr.ScheduleTimesRemaining)
		}
	}

	for _, r := range result.Rounds {
		mark := "✓"
		if !r.FullySchedulable {
			mark = "⚠"
		}
		fmt.Printf("%s draw %s round %d: %.0f%% schedulable\n", mark, r.DrawID, r.RoundNumber, r.ScheduledFraction*100)
	}

	if dryRun {
		fmt.Println("Dry run: no records were modified")
	}

	if outputPath != "" && !dryRun {
		f, err := excel.Generate(records, nil)
		if err != nil {
			return fmt.Errorf("generating Excel: %w", err)
		}
		if err := f.SaveAs(outputPath); err != nil {
			return fmt.Errorf("saving file: %w", err)
		}
		fmt.Printf("✓ Schedule saved to %s\n", outputPath)
	}

	return nil
}

func runAnalyze(tournamentPath string, deep bool) error {
	doc, err := tournament.LoadFromFile(tournamentPath)
	if err != nil {
		return fmt.Errorf("loading tournament: %w", err)
	}

	matchUps := doc.MatchUps()
	deps, err := dependency.Build(matchUps)
	if err != nil {
		return fmt.Errorf("resolving dependencies: %w", err)
	}

	var grid []*tournament.MatchUp
	for _, m := range matchUps {
		if m.Schedule.CourtID != "" && m.Schedule.CourtOrder > 0 {
			grid = append(grid, m)
		}
	}
	if len(grid) == 0 {
		return fmt.Errorf("tournament has no committed grid to analyze")
	}

	analysis, err := validator.Analyze(grid, deps, validator.Options{Deep: deep})
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}

	total := 0
	for courtID, issues := range analysis.CourtIssues {
		for _, issue := range issues {
			total++
			switch issue.Severity {
			case tournament.SeverityError, tournament.SeverityConflict:
				fmt.Printf("✗ %s on %s: %s (%s) related=%v\n",
					issue.Severity, courtID, issue.MatchUpID, issue.IssueType, issue.RelatedMatchUpIDs)
			default:
				fmt.Printf("⚠ %s on %s: %s (%s) related=%v\n",
					issue.Severity, courtID, issue.MatchUpID, issue.IssueType, issue.RelatedMatchUpIDs)
			}
		}
	}

	fmt.Printf("\nAnalysis complete: %d findings\n", total)
	return nil
}
