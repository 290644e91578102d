package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded flow runs",
	Long: `Reads the flow run log kept in PostgreSQL when DATABASE_URL is set. With --visitor,
prints that visitor's most recent runs and with --run the details of one run; otherwise
prints run counts per flow and outcome.`,
	RunE: runHistory,
}

var (
	historyVisitor string
	historyLimit   int
	historyRun     string
)

func init() {
	historyCmd.Flags().StringVar(&historyVisitor, "visitor", "", "Visitor ID to list runs for")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Flow run ID to show in full")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := cliConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for the flow run log")
	}

	database, err := db.Connect(cmd.Context(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer database.Close()

	out := cmd.OutOrStdout()
	if historyRun != "" {
		id, err := uuid.Parse(historyRun)
		if err != nil {
			return fmt.Errorf("invalid run ID %q: %w", historyRun, err)
		}
		run, err := database.GetFlowRun(cmd.Context(), id)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("flow run %s not found", id)
		}
		printFlowRun(out, *run, time.Now())
		return nil
	}
	if historyVisitor == "" {
		counts, err := database.CountFlowOutcomes(cmd.Context())
		if err != nil {
			return err
		}
		printOutcomeCounts(out, counts)
		return nil
	}

	runs, err := database.ListFlowRuns(cmd.Context(), historyVisitor, historyLimit)
	if err != nil {
		return err
	}
	printFlowRuns(out, runs, time.Now())
	return nil
}

func printFlowRuns(out io.Writer, runs []db.FlowRun, now time.Time) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No flow runs recorded.")
		return
	}
	for _, run := range runs {
		line := fmt.Sprintf("%s  %-14s %-16s %6dms  %s",
			run.ID, run.Flow, run.Outcome, run.DurationMs, humanize.RelTime(run.StartedAt, now, "ago", "from now"))
		if run.Message != nil {
			line += "  " + *run.Message
		}
		_, _ = fmt.Fprintln(out, line)
	}
}

func printFlowRun(out io.Writer, run db.FlowRun, now time.Time) {
	_, _ = fmt.Fprintf(out, "Run:      %s\n", run.ID)
	_, _ = fmt.Fprintf(out, "Visitor:  %s\n", run.VisitorID)
	_, _ = fmt.Fprintf(out, "Flow:     %s (%s)\n", run.Flow, run.Outcome)
	_, _ = fmt.Fprintf(out, "Started:  %s (%s)\n",
		run.StartedAt.Format(time.RFC3339), humanize.RelTime(run.StartedAt, now, "ago", "from now"))
	_, _ = fmt.Fprintf(out, "Duration: %dms\n", run.DurationMs)
	if run.Message != nil {
		_, _ = fmt.Fprintf(out, "Message:  %s\n", *run.Message)
	}
	if run.Error != nil {
		_, _ = fmt.Fprintf(out, "Error:    %s\n", *run.Error)
	}
}

func printOutcomeCounts(out io.Writer, counts []db.OutcomeCount) {
	if len(counts) == 0 {
		_, _ = fmt.Fprintln(out, "No flow runs recorded.")
		return
	}
	total := 0
	for _, c := range counts {
		_, _ = fmt.Fprintf(out, "%-14s %-16s %s\n", c.Flow, c.Outcome, humanize.Comma(int64(c.Count)))
		total += c.Count
	}
	_, _ = fmt.Fprintf(out, "Total: %s runs\n", humanize.Comma(int64(total)))
}
